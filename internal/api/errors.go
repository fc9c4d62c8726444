package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/paramstore/internal/api/shared"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/redact"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/service/auth"
	"github.com/phrazzld/paramstore/internal/store"
	"github.com/phrazzld/paramstore/internal/validators"
)

// errBadRequest marks malformed requests rejected before reaching the service.
var errBadRequest = errors.New("bad request")

// MapErrorToStatusCode maps an error to the HTTP status reported to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found comes before configuration: a missing parameter is both.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity

	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrTypeMismatch),
		errors.Is(err, domain.ErrUnknownValueType),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, validators.ErrUnknownValidator),
		errors.Is(err, validators.ErrInvalidParams),
		errors.Is(err, service.ErrUnsupportedFormat):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// messages are passed through redacted; everything else is replaced by a
// fixed text.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrNotFound):
		return "Parameter not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Parameter already exists"

	case errors.As(err, &validationErr):
		return redact.String(validationErr.Error())
	case errors.Is(err, domain.ErrValidation):
		return "Value failed validation"

	case errors.Is(err, domain.ErrTypeMismatch):
		return "Value does not match the parameter type"
	case errors.Is(err, domain.ErrInvalidFormat):
		return "Invalid value format"
	case errors.Is(err, domain.ErrUnknownValueType):
		return "Unknown value type"
	case errors.Is(err, domain.ErrEmptyName):
		return "Parameter name is required"
	case errors.Is(err, validators.ErrUnknownValidator):
		return "Unknown validator type"
	case errors.Is(err, validators.ErrInvalidParams):
		return "Invalid validator parameters"
	case errors.Is(err, service.ErrUnsupportedFormat):
		return "Unsupported record format"
	case errors.Is(err, errBadRequest), errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"

	case errors.Is(err, domain.ErrDecryption):
		return "Stored value could not be decrypted"
	case errors.Is(err, domain.ErrConfiguration):
		return "Parameter store is not configured correctly"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the reply for err. A non-empty defaultMsg replaces the
// safe message for server errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
