package dataset

import "wfguard/internal/model"

// balanceGroup is the unit the balancer equalizes over.
type balanceGroup struct {
	SiteID    string
	DefenseOn bool
}

// Balance equalizes sample counts across (site, defense-flag) groups by
// stable truncation: every group keeps its first minCount samples in their
// original relative order, so the result depends only on the input order.
// When there are no samples the call is a defined no-op.
func Balance(samples []model.Sample) ([]model.Sample, model.BalanceReport) {
	counts := make(map[balanceGroup]int)
	for _, s := range samples {
		counts[balanceGroup{s.Meta.SiteID, s.Meta.DefenseOn}]++
	}
	if len(counts) == 0 {
		return samples, model.BalanceReport{}
	}

	minCount := -1
	for _, c := range counts {
		if minCount < 0 || c < minCount {
			minCount = c
		}
	}
	if minCount <= 0 {
		// Degenerate: an empty group makes balancing meaningless, so the
		// input passes through unchanged.
		return samples, model.BalanceReport{Groups: len(counts)}
	}

	kept := make([]model.Sample, 0, minCount*len(counts))
	taken := make(map[balanceGroup]int, len(counts))
	for _, s := range samples {
		g := balanceGroup{s.Meta.SiteID, s.Meta.DefenseOn}
		if taken[g] < minCount {
			taken[g]++
			kept = append(kept, s)
		}
	}

	return kept, model.BalanceReport{
		Applied:      true,
		Groups:       len(counts),
		MinGroupSize: minCount,
		Kept:         len(kept),
		Discarded:    len(samples) - len(kept),
	}
}
