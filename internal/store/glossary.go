package store

import (
	"context"
	"database/sql"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/google/uuid"
)

// GlossaryStore defines the interface for glossary term persistence.
type GlossaryStore interface {
	// Upsert inserts the term or, when a row with the same
	// (novel_id, term) key exists, overwrites its translation, category,
	// description and auto_generated flag. Re-running an identical upsert
	// leaves the stored record unchanged apart from updated_at.
	Upsert(ctx context.Context, term *domain.GlossaryTerm) error

	// ListByNovel retrieves all terms for a novel ordered by term.
	ListByNovel(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error)

	// Delete removes one term by ID.
	// Returns ErrTermNotFound if the term does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteBulk removes all terms whose IDs appear in the list and
	// returns the number removed. Missing IDs are not an error.
	DeleteBulk(ctx context.Context, ids []uuid.UUID) (int64, error)

	// WithTx returns a new GlossaryStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) GlossaryStore
}
