// Package auth provides JWT issuing/validation and operator credential
// verification for the admin API. The platform runs with a single
// operator account configured at deploy time; there is no user store.
package auth

import (
	"context"
	"errors"
	"time"
)

// Common authentication errors
var (
	// ErrInvalidCredentials indicates a failed login attempt. The API
	// layer returns the same response for a wrong email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken indicates the token failed validation for any
	// reason: malformed, bad signature, or wrong issuer.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates a structurally valid but expired token.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the validated content of an access token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTService defines operations for managing access tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the operator.
	GenerateToken(ctx context.Context, subject string) (string, error)

	// ValidateToken validates a token string and extracts its claims.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Verifier checks login credentials against the configured operator
// account.
type Verifier interface {
	// Verify returns ErrInvalidCredentials unless email and password match
	// the configured operator.
	Verify(email, password string) error
}
