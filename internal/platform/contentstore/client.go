// Package contentstore provides the HTTP adapter for the external document
// store that holds full chapter body text. The relational database only
// mirrors chapter numbers and titles; this store is authoritative for
// content. Documents are addressed by (novel ID, chapter number) and
// written with merge semantics: only fields present in a patch overwrite.
package contentstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/avast/retry-go/v4"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Sentinel errors for the contentstore package.
var (
	// ErrChapterMissing is returned when no document exists for the
	// requested (novel, chapter) key.
	ErrChapterMissing = errors.New("chapter document not found")

	// ErrUnavailable is returned when the store cannot be reached or keeps
	// answering with server errors after retries.
	ErrUnavailable = errors.New("content store unavailable")
)

// transient-retry policy for network and 5xx failures. Provider-level
// rate-limit retries are handled by the pipelines, not here.
const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// ChapterDocument is the stored shape of one chapter.
type ChapterDocument struct {
	Content     string     `json:"content,omitempty"`
	Title       string     `json:"title,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// ChapterPatch is a merge update: nil fields are left untouched by the
// store.
type ChapterPatch struct {
	Content     *string    `json:"content,omitempty"`
	Title       *string    `json:"title,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Client is the HTTP client for the document content store.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a content store client from configuration.
// If logger is nil, a default logger will be used.
func NewClient(cfg config.ContentStoreConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:   httpClient,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// chapterPath builds the document path for a (novel, chapter) key.
func chapterPath(novelID uuid.UUID, number int) string {
	return fmt.Sprintf("/novels/%s/chapters/%d", novelID, number)
}

// Ping verifies the store is reachable. Used as a job-entry precondition.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}
	return nil
}

// GetChapter fetches one chapter document.
// Returns ErrChapterMissing if no document exists for the key.
func (c *Client) GetChapter(ctx context.Context, novelID uuid.UUID, number int) (*ChapterDocument, error) {
	var doc ChapterDocument

	err := retry.Do(
		func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetResult(&doc).
				Get(chapterPath(novelID, number))
			if err != nil {
				return err
			}
			if resp.StatusCode() == http.StatusNotFound {
				return retry.Unrecoverable(ErrChapterMissing)
			}
			if resp.IsError() {
				return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrChapterMissing) {
			return nil, ErrChapterMissing
		}
		c.logger.Warn("content store read failed",
			slog.String("novel_id", novelID.String()),
			slog.Int("chapter", number),
			slog.String("error", err.Error()))
		return nil, err
	}

	return &doc, nil
}

// SetChapter applies a merge patch to one chapter document, creating it if
// absent.
func (c *Client) SetChapter(ctx context.Context, novelID uuid.UUID, number int, patch ChapterPatch) error {
	err := retry.Do(
		func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetHeader("Content-Type", "application/merge-patch+json").
				SetBody(patch).
				Patch(chapterPath(novelID, number))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.logger.Warn("content store write failed",
			slog.String("novel_id", novelID.String()),
			slog.Int("chapter", number),
			slog.String("error", err.Error()))
		return err
	}

	return nil
}
