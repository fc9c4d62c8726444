package auth

import "errors"

var (
	// ErrInvalidToken indicates the token is malformed, signed with another key or
	// issued for another audience.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token's nbf or iat claim lies in the future.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrEmptySubject is returned when a token is requested without a subject.
	ErrEmptySubject = errors.New("token subject must not be empty")
)
