package packages

import (
	"fmt"

	"github.com/provincie-forge/publicatie/pkg/validator"
)

// ConflictError rejects a build before any write: locked resources, inactive
// acts, package types the environment does not permit.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func newConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ValidationFailedError rejects a build because the publication version does
// not pass its pre-flight schema.
type ValidationFailedError struct {
	Errors []validator.FieldError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("publication version failed validation with %d error(s)", len(e.Errors))
}
