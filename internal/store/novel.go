package store

import (
	"context"
	"database/sql"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/google/uuid"
)

// NovelStore defines the interface for novel and chapter metadata
// persistence. Chapter body text is out of scope here; it lives in the
// external content store.
type NovelStore interface {
	// GetByID retrieves a novel by its unique ID.
	// Returns ErrNovelNotFound if the novel does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Novel, error)

	// List retrieves novels ordered by last update descending.
	List(ctx context.Context, limit, offset int) ([]*domain.Novel, error)

	// UpdateStatus updates a novel's publication status.
	// Returns ErrNovelNotFound if the novel does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.NovelStatus) error

	// ListChapterNumbers returns all chapter numbers recorded for a novel,
	// ascending. Used to expand the "all chapters" job selector.
	ListChapterNumbers(ctx context.Context, novelID uuid.UUID) ([]int, error)

	// UpsertChapterTitle writes the chapter's title and refreshes its
	// updated_at timestamp, inserting the metadata row if absent.
	UpsertChapterTitle(ctx context.Context, novelID uuid.UUID, number int, title string) error

	// WithTx returns a new NovelStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) NovelStore
}
