package errs

import (
	"errors"
	"fmt"
)

// ErrConcurrencyConflict is the sentinel error for optimistic concurrency
// failures: another writer committed a newer version of the aggregate between
// this writer's read and its conditional update.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// ConcurrencyConflictError indicates that a conditional update keyed on an
// aggregate version matched no rows. Callers are expected to reload the
// aggregate and retry the whole read-evaluate-write sequence.
type ConcurrencyConflictError struct {
	ParamName string
	ID        any
	Version   int
	Cause     error
}

// NewConcurrencyConflictError creates a ConcurrencyConflictError for the given
// identifier and the version the writer expected to find.
func NewConcurrencyConflictError(paramName string, id any, version int) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		ParamName: paramName,
		ID:        id,
		Version:   version,
	}
}

// NewConcurrencyConflictErrorWithCause creates a ConcurrencyConflictError
// wrapping the lower-level storage error.
func NewConcurrencyConflictErrorWithCause(paramName string, id any, version int, cause error) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		ParamName: paramName,
		ID:        id,
		Version:   version,
		Cause:     cause,
	}
}

// Error formats the error message with the identifier and expected version.
func (e *ConcurrencyConflictError) Error() string {
	msg := fmt.Sprintf("%s: param is: %s, ID is: %s, expected version is: %d",
		ErrConcurrencyConflict, e.ParamName, e.ID, e.Version)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (cause: %s)", e.Cause)
	}
	return msg
}

// Unwrap returns the sentinel error to support errors.Is checks.
func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}
