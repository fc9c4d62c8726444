package validators

import "errors"

var (
	// ErrInvalidPath is returned for a dotted path without a module part or attribute part.
	ErrInvalidPath = errors.New("invalid validator path")

	// ErrModuleNotFound is returned when no validators were registered under the module part of a path.
	ErrModuleNotFound = errors.New("cannot import module")

	// ErrAttributeNotFound is returned when the module exists but does not export the attribute.
	ErrAttributeNotFound = errors.New("does not have attribute")

	// ErrUnknownValidator is returned when a validator type is neither built in nor configured.
	ErrUnknownValidator = errors.New("unknown validator type")

	// ErrInvalidParams is returned when validator params are missing or have the wrong shape.
	ErrInvalidParams = errors.New("invalid validator params")
)
