package dataset

import (
	"math/rand"

	"wfguard/internal/model"
)

// Ratios holds the train/val/test proportions for the splitter. The test
// partition absorbs any rounding residue, so they need not sum exactly to 1.
type Ratios struct {
	Train float64
	Val   float64
	Test  float64
}

// DefaultRatios is the standard 70/15/15 partitioning.
var DefaultRatios = Ratios{Train: 0.70, Val: 0.15, Test: 0.15}

// SplitVisits assigns every distinct visit identity present in the metadata
// to exactly one split label. Identities are deduplicated across defense
// flags, so a visit captured under both settings still lands in a single
// split and can never leak across partitions.
//
// The assignment is a pure function of the metadata order, the ratios and
// the seed: identical inputs produce an identical split across runs.
func SplitVisits(metas []model.Metadata, ratios Ratios, seed int64) map[model.VisitKey]model.SplitLabel {
	// Enumerate visits in first-appearance order so the permutation input
	// is deterministic for a given metadata ordering.
	var visits []model.VisitKey
	seen := make(map[model.VisitKey]bool, len(metas))
	for _, m := range metas {
		v := m.Visit()
		if !seen[v] {
			seen[v] = true
			visits = append(visits, v)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(visits))

	n := len(visits)
	trainCut := int(float64(n) * ratios.Train)
	valCut := int(float64(n)*ratios.Train + float64(n)*ratios.Val)

	assign := make(map[model.VisitKey]model.SplitLabel, n)
	for i, p := range perm {
		v := visits[p]
		switch {
		case i < trainCut:
			assign[v] = model.SplitTrain
		case i < valCut:
			assign[v] = model.SplitVal
		default:
			assign[v] = model.SplitTest
		}
	}
	return assign
}
