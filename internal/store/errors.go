package store

import "errors"

var (
	// ErrMissingInput marks a manifest or session file that is absent or
	// unreadable. Callers treat it as a per-session skip; it is fatal only
	// when it empties the entire corpus.
	ErrMissingInput = errors.New("missing input")

	// ErrMalformedSession marks a session file whose table is empty or is
	// missing one of the required fields {timestamp, size, direction}.
	ErrMalformedSession = errors.New("malformed session")
)
