package errs

import (
	"errors"
	"fmt"
)

// ErrVersionIsInvalid is the sentinel error for invalid aggregate versions.
var ErrVersionIsInvalid = errors.New("version is invalid")

// VersionIsInvalidError indicates that an aggregate version value could not
// be interpreted or does not satisfy versioning rules.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewVersionIsInvalidError creates a VersionIsInvalidError wrapping the
// lower-level error that describes the invalid version.
func NewVersionIsInvalidError(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

// NewVersionIsInvalidErrorWithCause creates a VersionIsInvalidError without
// an underlying cause.
func NewVersionIsInvalidErrorWithCause(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
	}
}

// Error formats the error message, appending the cause when present.
func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %s)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

// Unwrap returns the sentinel error to support errors.Is checks.
func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}
