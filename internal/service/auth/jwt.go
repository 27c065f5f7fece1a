package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "riwaya-api"

// jwtService implements JWTService with HMAC-SHA256 signed tokens.
type jwtService struct {
	secret   []byte
	lifetime time.Duration
	// timeFn is swapped in tests to control expiry
	timeFn func() time.Time
}

// NewJWTService creates a JWTService from auth configuration.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	lifetime := time.Duration(cfg.TokenLifetimeMinutes) * time.Minute
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	return &jwtService{
		secret:   []byte(cfg.JWTSecret),
		lifetime: lifetime,
		timeFn:   time.Now,
	}, nil
}

// GenerateToken implements JWTService.GenerateToken
func (s *jwtService) GenerateToken(_ context.Context, subject string) (string, error) {
	now := s.timeFn()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken implements JWTService.ValidateToken
func (s *jwtService) ValidateToken(_ context.Context, tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.timeFn),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	out := &Claims{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
