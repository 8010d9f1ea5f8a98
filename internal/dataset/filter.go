package dataset

import "wfguard/internal/model"

// DefaultMinPackets is the default quality threshold: sessions with fewer
// packets are rejected.
const DefaultMinPackets = 10

// QualityFilter rejects sessions whose packet count is below a minimum.
// Rejection is a per-session skip, never fatal to the batch.
type QualityFilter struct {
	MinPackets int
}

// Accept reports whether the session passes the quality check.
func (f QualityFilter) Accept(records []model.PacketRecord) bool {
	return len(records) >= f.MinPackets
}
