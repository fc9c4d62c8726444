package auth

import (
	"context"
	"time"
)

// Audience is the aud claim carried by every admin token.
const Audience = "paramstore-admin"

// JWTService issues and checks the bearer tokens that guard the admin API.
type JWTService interface {
	// GenerateToken signs an access token for subject, usually an operator name.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken verifies tokenString and returns its claims. Failures map to
	// ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// TokenLifetime reports how long issued tokens stay valid.
	TokenLifetime() time.Duration
}

// Claims is the validated content of an admin token.
type Claims struct {
	Subject   string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti"`
}
