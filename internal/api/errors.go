package api

import (
	"errors"
	"net/http"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service/auth"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrNovelNotFound),
		errors.Is(err, store.ErrTermNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrJobNotPausable),
		errors.Is(err, service.ErrJobNotResumable):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrInvalidSelector),
		errors.Is(err, service.ErrNoChaptersSelected),
		errors.Is(err, domain.ErrInvalidSettingsKind),
		errors.Is(err, domain.ErrEmptyTerm),
		errors.Is(err, domain.ErrEmptyTermTranslation),
		errors.Is(err, domain.ErrInvalidChapter),
		errors.Is(err, domain.ErrNoTargetChapters):
		return http.StatusBadRequest

	// Backpressure
	case errors.Is(err, service.ErrJobQueueFull):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, store.ErrJobNotFound):
		return "Job not found"

	case errors.Is(err, store.ErrNovelNotFound):
		return "Novel not found"

	case errors.Is(err, store.ErrTermNotFound):
		return "Glossary term not found"

	case errors.Is(err, service.ErrJobNotPausable):
		return "Job is not active"

	case errors.Is(err, service.ErrJobNotResumable):
		return "Job is not paused"

	case errors.Is(err, service.ErrInvalidSelector):
		return "Exactly one chapter selector must be provided"

	case errors.Is(err, service.ErrNoChaptersSelected):
		return "No chapters match the selector"

	case errors.Is(err, service.ErrJobQueueFull):
		return "Job queue is full, try again later"

	case errors.Is(err, domain.ErrInvalidSettingsKind):
		return "Unknown job kind"

	case errors.Is(err, domain.ErrEmptyTerm),
		errors.Is(err, domain.ErrEmptyTermTranslation):
		return "Term and translation are required"

	case errors.Is(err, domain.ErrInvalidChapter),
		errors.Is(err, domain.ErrNoTargetChapters):
		return "Invalid chapter selection"

	default:
		return "An unexpected error occurred"
	}
}
