package dataset

import (
	"fmt"
	"reflect"
	"testing"

	"wfguard/internal/model"
)

func metaFor(site, visit string, defenseOn bool) model.Metadata {
	return model.Metadata{SiteID: site, VisitID: visit, DefenseOn: defenseOn, PacketCount: 50, TotalBytes: 5000}
}

func TestSplitScenarioTenVisits(t *testing.T) {
	// 10 visits to one site, defense off, ratios 0.70/0.15/0.15:
	// 7 train, 1 val, 2 test (test absorbs the rounding residue).
	var metas []model.Metadata
	for i := 0; i < 10; i++ {
		metas = append(metas, metaFor("site_01", fmt.Sprintf("visit_%03d", i), false))
	}

	assign := SplitVisits(metas, DefaultRatios, 42)
	if len(assign) != 10 {
		t.Fatalf("Expected 10 assigned visits, got %d", len(assign))
	}

	counts := map[model.SplitLabel]int{}
	for _, label := range assign {
		counts[label]++
	}
	if counts[model.SplitTrain] != 7 || counts[model.SplitVal] != 1 || counts[model.SplitTest] != 2 {
		t.Errorf("Expected 7/1/2 split, got %d/%d/%d",
			counts[model.SplitTrain], counts[model.SplitVal], counts[model.SplitTest])
	}
}

func TestSplitNoLeakageAcrossDefenseFlags(t *testing.T) {
	// The same visit identity appears under both defense settings; it must
	// be deduplicated and receive exactly one label.
	var metas []model.Metadata
	for i := 0; i < 20; i++ {
		visit := fmt.Sprintf("visit_%03d", i)
		metas = append(metas, metaFor("site_01", visit, false))
		metas = append(metas, metaFor("site_01", visit, true))
	}

	assign := SplitVisits(metas, DefaultRatios, 7)
	if len(assign) != 20 {
		t.Fatalf("Expected 20 distinct visits after dedup, got %d", len(assign))
	}

	// Every metadata row must resolve to exactly the one label of its visit.
	for _, m := range metas {
		if _, ok := assign[m.Visit()]; !ok {
			t.Fatalf("Visit %v has no split assignment", m.Visit())
		}
	}
}

func TestSplitDeterminism(t *testing.T) {
	var metas []model.Metadata
	for i := 0; i < 50; i++ {
		metas = append(metas, metaFor("site_02", fmt.Sprintf("visit_%03d", i), i%2 == 0))
	}

	first := SplitVisits(metas, DefaultRatios, 1234)
	second := SplitVisits(metas, DefaultRatios, 1234)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Identical seed and ordering produced different assignments")
	}
}

func TestSplitRoundingResidueGoesToTest(t *testing.T) {
	var metas []model.Metadata
	for i := 0; i < 3; i++ {
		metas = append(metas, metaFor("site_03", fmt.Sprintf("visit_%03d", i), false))
	}

	// floor(3*0.7)=2 train, floor(3*0.85)-2=0 val, remainder 1 test.
	assign := SplitVisits(metas, DefaultRatios, 99)
	counts := map[model.SplitLabel]int{}
	for _, label := range assign {
		counts[label]++
	}
	if counts[model.SplitTrain] != 2 || counts[model.SplitVal] != 0 || counts[model.SplitTest] != 1 {
		t.Errorf("Expected 2/0/1 split, got %d/%d/%d",
			counts[model.SplitTrain], counts[model.SplitVal], counts[model.SplitTest])
	}
}

func TestSplitEmptyMetadata(t *testing.T) {
	assign := SplitVisits(nil, DefaultRatios, 42)
	if len(assign) != 0 {
		t.Errorf("Expected no assignments for empty metadata, got %d", len(assign))
	}
}
