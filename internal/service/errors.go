package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/store"
	"github.com/phrazzld/paramstore/internal/validators"
)

var (
	// ErrSameKey is returned by ApplyRotation when the old key equals the configured key.
	ErrSameKey = errors.New("old key and new key are identical")

	// ErrUnsupportedFormat is returned for import files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported record format")
)

// MissingParameterError reports a slug with no stored parameter. It matches
// both domain.ErrConfiguration and store.ErrNotFound.
type MissingParameterError struct {
	Slug string
}

func (e *MissingParameterError) Error() string {
	return domain.NewMissingParameterError(e.Slug).Error()
}

func (e *MissingParameterError) Unwrap() []error {
	return []error{domain.ErrConfiguration, store.ErrParameterNotFound}
}

// ServiceError wraps unexpected failures with the operation that hit them.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parameter service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("parameter service %s failed: %s", e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// passthrough lists error kinds callers act on; they are returned unwrapped.
var passthrough = []error{
	domain.ErrValidation,
	domain.ErrInvalidFormat,
	domain.ErrTypeMismatch,
	domain.ErrConfiguration,
	domain.ErrDecryption,
	domain.ErrUnknownValueType,
	domain.ErrEmptyName,
	store.ErrNotFound,
	store.ErrDuplicate,
	validators.ErrInvalidPath,
	validators.ErrModuleNotFound,
	validators.ErrAttributeNotFound,
	validators.ErrUnknownValidator,
	validators.ErrInvalidParams,
	ErrSameKey,
	ErrUnsupportedFormat,
}

// NewServiceError wraps err, unless it is one of the known error kinds, in
// which case it is returned as is. A nil err yields nil.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range passthrough {
		if errors.Is(err, kind) {
			return err
		}
	}
	return &ServiceError{Operation: operation, Message: message, Err: err}
}
