// Package generation defines the interface to the text generation provider
// and the error taxonomy the job pipelines branch on. The pipelines only
// care about one distinction: rate-limited (rotate key and retry the same
// chapter) versus everything else (log and skip the chapter).
package generation

import (
	"context"
	"errors"
	"strings"
)

// Sentinel errors for generation failures.
var (
	// ErrRateLimited indicates the provider rejected the request because
	// the key's quota is exhausted. Retryable with a different key.
	ErrRateLimited = errors.New("generation rate limited")

	// ErrEmptyResponse indicates the provider answered without usable text.
	ErrEmptyResponse = errors.New("generation returned empty response")

	// ErrContentBlocked indicates the provider refused the prompt or
	// response on safety grounds. Not retryable.
	ErrContentBlocked = errors.New("generation content blocked")

	// ErrNoAPIKeys indicates a request was attempted with no keys
	// configured.
	ErrNoAPIKeys = errors.New("no api keys configured")
)

// Request is one generation call. The key travels with the request so the
// caller controls rotation; the provider holds no key state.
type Request struct {
	Model  string
	APIKey string
	Prompt string
}

// Generator produces text from a prompt. Implementations must classify
// provider quota errors as ErrRateLimited (directly or wrapped) so the
// pipelines can rotate keys.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// rateLimitMarkers are substrings that identify a quota rejection in
// provider error text. The provider SDK does not expose a typed quota
// error, so classification is textual.
var rateLimitMarkers = []string{
	"429",
	"quota",
	"resource_exhausted",
	"rate limit",
}

// IsRateLimited reports whether err represents a provider quota
// rejection, either as the ErrRateLimited sentinel or by the shape of the
// provider's error text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
