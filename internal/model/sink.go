package model

// Sink defines a generic interface for delivering a finished build to a
// persistent store or a message bus. The on-disk dataset is always written;
// sinks are additional, optional destinations.
type Sink interface {
	// Name identifies the sink in logs.
	Name() string

	// Write delivers the build summary and the per-session split rows.
	Write(summary *BuildSummary, rows []SessionRow) error

	// Close releases the sink's connection, if any.
	Close()
}
