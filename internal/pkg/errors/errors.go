package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreUnavailable marks failures talking to the graph store. Always fatal for ingestion.
	ErrStoreUnavailable = errors.New("graph store unavailable")
	// ErrConflict marks writes that collide with an existing record.
	ErrConflict = errors.New("conflict")
	// ErrRetryable marks transient database failures such as deadlocks.
	ErrRetryable = errors.New("retryable")
)
