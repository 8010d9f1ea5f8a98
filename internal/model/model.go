package model

// PacketRecord is one packet of a parsed session: capture time in seconds,
// frame size in bytes, and direction (+1 outbound, -1 inbound). Records are
// ordered ascending by timestamp within a session.
type PacketRecord struct {
	Timestamp float64
	Size      int
	Direction int
}

// SessionKey identifies one captured session: a visit to a site under one
// defense setting.
type SessionKey struct {
	SiteID    string
	VisitID   string
	DefenseOn bool
}

// VisitKey identifies one browsing event independent of the defense flag.
// It is the unit of the train/val/test split: every sample sharing a
// VisitKey lands in the same split.
type VisitKey struct {
	SiteID  string
	VisitID string
}

// Visit returns the split unit for this session.
func (k SessionKey) Visit() VisitKey {
	return VisitKey{SiteID: k.SiteID, VisitID: k.VisitID}
}

// Metadata describes one retained session. It is positionally aligned with
// the feature vector extracted from the same session.
type Metadata struct {
	SiteID      string
	VisitID     string
	DefenseOn   bool
	PacketCount int
	TotalBytes  int64
}

// Key returns the session identity of this metadata row.
func (m Metadata) Key() SessionKey {
	return SessionKey{SiteID: m.SiteID, VisitID: m.VisitID, DefenseOn: m.DefenseOn}
}

// Visit returns the split unit of this metadata row.
func (m Metadata) Visit() VisitKey {
	return VisitKey{SiteID: m.SiteID, VisitID: m.VisitID}
}

// ManifestRow is one entry of the corpus manifest produced by the parse
// stage and consumed read-only by the build stage.
type ManifestRow struct {
	SiteID      string
	VisitID     string
	DefenseOn   bool
	PCAPPath    string
	ParsedPath  string
	PacketCount int
	TotalBytes  int64
}

// Key returns the session identity of this manifest row.
func (r ManifestRow) Key() SessionKey {
	return SessionKey{SiteID: r.SiteID, VisitID: r.VisitID, DefenseOn: r.DefenseOn}
}

// Sample pairs one fixed-length feature vector with the metadata of the
// session it was extracted from.
type Sample struct {
	Vector []float32
	Meta   Metadata
}

// SplitLabel names one of the three dataset partitions.
type SplitLabel string

const (
	SplitTrain SplitLabel = "train"
	SplitVal   SplitLabel = "val"
	SplitTest  SplitLabel = "test"
)

// Splits lists the partitions in their canonical order.
var Splits = []SplitLabel{SplitTrain, SplitVal, SplitTest}

// SessionRow is one retained session together with its split assignment,
// as delivered to sinks and to the overhead table.
type SessionRow struct {
	Meta  Metadata
	Split SplitLabel
}
