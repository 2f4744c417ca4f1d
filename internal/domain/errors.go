package domain

import (
	"errors"
	"fmt"
)

// Sentinels. Layers wrap these with %w; transports map them to status codes.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("conflict")
	ErrTransient     = errors.New("transient failure")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every rejected field of a request. The zero value
// is an empty collector; see Add and Err.
type ValidationError struct {
	Errors []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return new(ValidationError).Add(field, message)
}

func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// Add appends a field error and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// Err returns e as an error, or nil if nothing was added.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation: no errors"
	case 1:
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	default:
		return fmt.Sprintf("validation: %d errors", len(e.Errors))
	}
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsRetryable reports whether repeating the same request may succeed.
// Only transient failures and lost version races qualify.
func IsRetryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, ErrValidation),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized):
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrConflict)
}
