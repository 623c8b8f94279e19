package domain

import (
	"errors"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when client-supplied data fails a declared constraint.
	// ValidationErrors unwraps to it.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidStatus is returned when a status is not one of the enumerated values.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidPriority is returned when a priority is not one of the enumerated values.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrUnauthorized is returned when no user identity is available for an operation.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// FieldError is a single violated constraint on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every field violation found in one input.
type ValidationErrors []FieldError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (v ValidationErrors) Unwrap() error {
	return ErrValidation
}

// Add appends a violation for field.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Err returns v as an error, or nil when no violation was recorded.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
