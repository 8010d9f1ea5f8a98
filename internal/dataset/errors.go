package dataset

import "errors"

// ErrEmptyCorpus means zero sessions survived loading and quality
// filtering. It is the only per-corpus fatal condition: the pipeline aborts
// with a distinct non-zero exit status.
var ErrEmptyCorpus = errors.New("empty corpus: no sessions survived filtering")
