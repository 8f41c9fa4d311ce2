// Package errorx defines the error kinds surfaced by the delivery core.
// Callers match them with errors.Is; wrapping layers add context with %w.
package errorx

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a record or candidate id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when an update would move a status backward
	// or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicatePosition is returned when a reorder batch would produce two
	// records at the same sequence position.
	ErrDuplicatePosition = errors.New("duplicate sequence position")

	// ErrReorderConflict is returned when a reorder was planned against an order
	// that no longer matches the store.
	ErrReorderConflict = errors.New("reorder conflict")

	// ErrInvalidIndex is returned for a move target outside the current list.
	ErrInvalidIndex = errors.New("invalid reorder index")

	// ErrUnknownCandidate is returned when confirming or discarding a candidate
	// token that is not pending.
	ErrUnknownCandidate = errors.New("unknown candidate")

	// ErrInvalidImage is returned when an image reference cannot be resolved.
	ErrInvalidImage = errors.New("invalid image reference")

	// ErrNoFrame is returned by a frame source with nothing waiting.
	ErrNoFrame = errors.New("no frame available")

	// ErrPersistence marks failures of the underlying storage. Always retryable.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError wraps a storage driver error with the operation that failed.
type PersistenceError struct {
	Op  string
	Err error
}

// Persistence wraps err as a retryable storage failure. Returns nil for nil err.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// Error implements error.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

// Unwrap exposes both the persistence sentinel and the driver error.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

// Retryable reports whether the caller may retry the same operation unchanged.
// Only storage failures qualify; invariant violations never do.
func Retryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
