package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an id is absent from the reconciled view.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks user input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate marks a name, email or username already in use.
	ErrDuplicate = errors.New("duplicate")
)

// ValidationError describes which field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError wraps ErrNotFound with the kind and id that were looked up.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s %q %w", kind, id, ErrNotFound)
}

// DuplicateError wraps ErrDuplicate with the conflicting value.
func DuplicateError(field, value string) error {
	return fmt.Errorf("%s %q already exists: %w", field, value, ErrDuplicate)
}
