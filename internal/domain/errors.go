package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a value is rejected by an attached validator.
	// This is usually wrapped in a *ValidationError carrying the failing rule.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when a raw string cannot be decoded as its declared type,
	// or when a typed value violates a format rule of that type (URL, email, percentage bounds).
	ErrInvalidFormat = errors.New("invalid format")

	// ErrTypeMismatch is returned when a setter receives a Go value whose type does not
	// match the parameter's declared value type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrConfiguration marks a deployment misconfiguration: a required parameter is
	// missing or an encryption key is absent or unusable.
	ErrConfiguration = errors.New("improperly configured")

	// ErrDecryption is returned when an encrypted value cannot be opened with the key in use.
	ErrDecryption = errors.New("decryption failed")

	// ErrUnknownValueType is returned for a type tag outside the closed set.
	ErrUnknownValueType = errors.New("unknown value type")

	// ErrEmptyName is returned when a parameter is created without a usable name or slug.
	ErrEmptyName = errors.New("parameter name cannot be empty")
)

// ValidationError describes a value rejected by a validation rule.
type ValidationError struct {
	Field   string // parameter slug or field name, may be empty
	Code    string // machine readable rule identifier, e.g. "min_value"
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause, defaulting to ErrValidation.
func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrValidation
}

// NewValidationError creates a ValidationError wrapping ErrValidation.
func NewValidationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Err: ErrValidation}
}

// NewTypeMismatchError reports that expected was required but got was supplied.
func NewTypeMismatchError(expected string, got any) error {
	return fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, expected, got)
}

// NewFormatError wraps ErrInvalidFormat with a readable message.
func NewFormatError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

// NewMissingParameterError reports that a required parameter has not been configured.
func NewMissingParameterError(slug string) error {
	return fmt.Errorf("%w: %s parameters need to be set", ErrConfiguration, slug)
}
