package auth

import (
	"crypto/subtle"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// operatorVerifier checks logins against the single configured operator.
type operatorVerifier struct {
	email        string
	passwordHash string
}

// NewOperatorVerifier creates a Verifier over the configured operator
// account.
func NewOperatorVerifier(cfg config.AuthConfig) Verifier {
	return &operatorVerifier{
		email:        cfg.OperatorEmail,
		passwordHash: cfg.OperatorPasswordHash,
	}
}

// Verify implements Verifier.Verify. The bcrypt comparison runs even for
// an unknown email so both failure paths take similar time.
func (v *operatorVerifier) Verify(email, password string) error {
	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(v.email)) == 1

	if err := bcrypt.CompareHashAndPassword([]byte(v.passwordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	if !emailMatch {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword generates a bcrypt hash for an operator password. Used by
// deployment tooling, not by the request path.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
