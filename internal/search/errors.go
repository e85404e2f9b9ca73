package search

import "errors"

// ErrCorpusUnavailable wraps a failed corpus fetch. It is surfaced on a
// session only when the failing query is still the current one; stale
// failures are discarded like stale successes.
var ErrCorpusUnavailable = errors.New("corpus unavailable")
