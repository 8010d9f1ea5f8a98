package model

import "time"

// DropReport counts sessions excluded before feature extraction, by reason.
type DropReport struct {
	Missing   int `json:"missing"`
	Malformed int `json:"malformed"`
	TooShort  int `json:"too_short"`
}

// Total returns the number of dropped sessions across all reasons.
func (d DropReport) Total() int {
	return d.Missing + d.Malformed + d.TooShort
}

// BalanceReport records what the balancer did for one build.
type BalanceReport struct {
	Applied      bool `json:"applied"`
	Groups       int  `json:"groups"`
	MinGroupSize int  `json:"min_group_size"`
	Kept         int  `json:"kept"`
	Discarded    int  `json:"discarded"`
}

// SplitSizes holds the number of samples assigned to each partition.
type SplitSizes struct {
	Train int `json:"train"`
	Val   int `json:"val"`
	Test  int `json:"test"`
}

// BuildSummary is the corpus-level record of one dataset build. It is
// written as summary.json next to the matrices and published to sinks.
type BuildSummary struct {
	BuildID      string        `json:"build_id"`
	CreatedAt    time.Time     `json:"created_at"`
	Sessions     int           `json:"sessions"`
	Retained     int           `json:"retained"`
	Dropped      DropReport    `json:"dropped"`
	Balance      BalanceReport `json:"balance"`
	Splits       SplitSizes    `json:"splits"`
	VectorLength int           `json:"vector_length"`
	MaxPackets   int           `json:"max_packets"`
	Seed         int64         `json:"seed"`
	OutputDir    string        `json:"output_dir"`
}
