// Package service provides the application-level operations behind the
// HTTP handlers: job supervision, glossary management and pipeline
// settings.
package service

import "errors"

// Common service errors - sentinel errors callers check with errors.Is().
// The API layer maps these to HTTP status codes.
var (
	// ErrNoChaptersSelected indicates a job start request whose selector
	// resolves to an empty chapter list. Maps to 400.
	ErrNoChaptersSelected = errors.New("chapter selector resolves to no chapters")

	// ErrInvalidSelector indicates a start request carrying none or more
	// than one of the selector forms. Maps to 400.
	ErrInvalidSelector = errors.New("exactly one chapter selector must be provided")

	// ErrJobNotPausable indicates a pause request for a job that is not
	// active. Maps to 409.
	ErrJobNotPausable = errors.New("job cannot be paused in its current status")

	// ErrJobNotResumable indicates a resume request for a job that is not
	// paused. Maps to 409.
	ErrJobNotResumable = errors.New("job cannot be resumed in its current status")

	// ErrJobQueueFull indicates the background runner cannot accept more
	// work right now. Maps to 503.
	ErrJobQueueFull = errors.New("job queue is full")
)
