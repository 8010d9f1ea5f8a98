package dataset

import (
	"fmt"
	"testing"

	"wfguard/internal/model"
)

func sampleFor(site string, defenseOn bool, visit string) model.Sample {
	return model.Sample{
		Vector: []float32{1, 2, 3},
		Meta:   model.Metadata{SiteID: site, VisitID: visit, DefenseOn: defenseOn},
	}
}

func TestBalanceTruncatesToSmallestGroup(t *testing.T) {
	// 1. Three groups with 5, 3 and 4 samples.
	var samples []model.Sample
	for i := 0; i < 5; i++ {
		samples = append(samples, sampleFor("site_a", false, fmt.Sprintf("visit_%d", i)))
	}
	for i := 0; i < 3; i++ {
		samples = append(samples, sampleFor("site_a", true, fmt.Sprintf("visit_%d", i)))
	}
	for i := 0; i < 4; i++ {
		samples = append(samples, sampleFor("site_b", false, fmt.Sprintf("visit_%d", i)))
	}

	// 2. Balance and verify every group holds exactly the minimum count.
	kept, report := Balance(samples)
	if !report.Applied {
		t.Fatalf("Expected balancing to apply")
	}
	if report.MinGroupSize != 3 {
		t.Errorf("Expected min group size 3, got %d", report.MinGroupSize)
	}
	if len(kept) != 9 {
		t.Fatalf("Expected 9 kept samples, got %d", len(kept))
	}

	counts := map[balanceGroup]int{}
	for _, s := range kept {
		counts[balanceGroup{s.Meta.SiteID, s.Meta.DefenseOn}]++
	}
	for g, c := range counts {
		if c != 3 {
			t.Errorf("Group %+v has %d samples, expected 3", g, c)
		}
	}
	if report.Discarded != 3 {
		t.Errorf("Expected 3 discarded, got %d", report.Discarded)
	}
}

func TestBalanceIsStable(t *testing.T) {
	samples := []model.Sample{
		sampleFor("site_a", false, "visit_0"),
		sampleFor("site_a", false, "visit_1"),
		sampleFor("site_a", false, "visit_2"),
		sampleFor("site_a", true, "visit_0"),
	}

	kept, _ := Balance(samples)
	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept samples, got %d", len(kept))
	}
	// The first sample of each group survives, in original relative order.
	if kept[0].Meta.VisitID != "visit_0" || kept[0].Meta.DefenseOn {
		t.Errorf("Unexpected first kept sample: %+v", kept[0].Meta)
	}
	if kept[1].Meta.VisitID != "visit_0" || !kept[1].Meta.DefenseOn {
		t.Errorf("Unexpected second kept sample: %+v", kept[1].Meta)
	}
}

func TestBalanceEmptyInputIsNoOp(t *testing.T) {
	kept, report := Balance(nil)
	if len(kept) != 0 {
		t.Errorf("Expected no samples, got %d", len(kept))
	}
	if report.Applied {
		t.Errorf("Balancing must not report as applied on empty input")
	}
}
