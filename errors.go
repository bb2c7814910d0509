package litequeue

import "errors"

// Errors returned by Queue and Collection operations. Failures of the
// underlying store are passed through as-is, wrapped only for context.
var (
	// ErrInvalidOperation indicates a transactional-only operation (Commit,
	// Abort, CurrentCheckouts, ResetOrphans) was invoked on a queue
	// constructed in non-transactional mode.
	ErrInvalidOperation = errors.New("litequeue: operation requires a transactional queue")

	// ErrInvalidArgument indicates a nil item or entry was passed where a
	// value is required.
	ErrInvalidArgument = errors.New("litequeue: nil item or entry")

	// ErrNotFound indicates the record targeted by an update no longer
	// exists in the collection.
	ErrNotFound = errors.New("litequeue: record not found")
)
