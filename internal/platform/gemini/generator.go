// Package gemini implements the generation.Generator interface using
// Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/generation"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/redact"
	"google.golang.org/genai"
)

// Generator calls the Gemini API. Because the API key varies per request
// (the pipelines rotate through a keyring), a client is constructed per
// call rather than held on the struct.
type Generator struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Ensure Generator implements the generation.Generator interface
var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed generator.
// If lg is nil, a default logger will be used.
func NewGenerator(cfg config.LLMConfig, lg *slog.Logger) *Generator {
	if lg == nil {
		lg = slog.Default()
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	return &Generator{
		logger:  lg.With(slog.String("component", "gemini_generator")),
		timeout: timeout,
	}
}

// Generate implements generation.Generator.Generate.
func (g *Generator) Generate(ctx context.Context, req generation.Request) (string, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if req.APIKey == "" {
		return "", generation.ErrNoAPIKeys
	}
	if req.Model == "" {
		return "", fmt.Errorf("model name cannot be empty")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	client, err := genai.NewClient(callCtx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	start := time.Now()
	resp, err := client.Models.GenerateContent(callCtx, req.Model, genai.Text(req.Prompt), nil)
	if err != nil {
		if generation.IsRateLimited(err) {
			log.Warn("gemini quota exhausted",
				slog.String("model", req.Model),
				slog.String("error", redact.Error(err)))
			return "", fmt.Errorf("%w: %s", generation.ErrRateLimited, redact.Error(err))
		}
		log.Error("gemini call failed",
			slog.String("model", req.Model),
			slog.String("error", redact.Error(err)))
		return "", fmt.Errorf("gemini call failed: %s", redact.Error(err))
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		if blocked(resp) {
			log.Warn("gemini response blocked", slog.String("model", req.Model))
			return "", generation.ErrContentBlocked
		}
		return "", generation.ErrEmptyResponse
	}

	log.Debug("gemini call completed",
		slog.String("model", req.Model),
		slog.Duration("duration", time.Since(start)),
		slog.Int("response_chars", len(text)))
	return text, nil
}

// blocked reports whether the response was suppressed by a safety filter.
func blocked(resp *genai.GenerateContentResponse) bool {
	if resp == nil {
		return false
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return true
	}
	for _, cand := range resp.Candidates {
		if cand.FinishReason == genai.FinishReasonSafety ||
			cand.FinishReason == genai.FinishReasonProhibitedContent {
			return true
		}
	}
	return false
}
