package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// PostgresGlossaryStore implements the store.GlossaryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresGlossaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGlossaryStore creates a new PostgreSQL implementation of the
// GlossaryStore interface. If logger is nil, a default logger will be used.
func NewPostgresGlossaryStore(db store.DBTX, logger *slog.Logger) *PostgresGlossaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGlossaryStore{
		db:     db,
		logger: logger.With(slog.String("component", "glossary_store")),
	}
}

// Ensure PostgresGlossaryStore implements store.GlossaryStore interface
var _ store.GlossaryStore = (*PostgresGlossaryStore)(nil)

// WithTx returns a new GlossaryStore instance that uses the provided
// transaction.
func (s *PostgresGlossaryStore) WithTx(tx *sql.Tx) store.GlossaryStore {
	return &PostgresGlossaryStore{db: tx, logger: s.logger}
}

// Upsert implements store.GlossaryStore.Upsert.
// The (novel_id, term) unique constraint makes re-extraction overwrite
// rather than duplicate. The IS DISTINCT FROM guard keeps an identical
// payload from touching the row, so updated_at only moves on real changes.
func (s *PostgresGlossaryStore) Upsert(ctx context.Context, term *domain.GlossaryTerm) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := term.Validate(); err != nil {
		log.Warn("glossary term validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("term", term.Term))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO glossary_terms
			(id, novel_id, term, translation, category, description,
			 auto_generated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (novel_id, term)
		DO UPDATE SET
			translation = EXCLUDED.translation,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			auto_generated = EXCLUDED.auto_generated,
			updated_at = EXCLUDED.updated_at
		WHERE (glossary_terms.translation, glossary_terms.category,
			glossary_terms.description, glossary_terms.auto_generated)
			IS DISTINCT FROM
			(EXCLUDED.translation, EXCLUDED.category,
			EXCLUDED.description, EXCLUDED.auto_generated)
	`

	_, err := s.db.ExecContext(ctx, query,
		term.ID,
		term.NovelID,
		term.Term,
		term.Translation,
		term.Category,
		term.Description,
		term.AutoGenerated,
		term.CreatedAt,
		time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: novel with ID %s not found",
				store.ErrInvalidEntity, term.NovelID)
		}
		log.Error("failed to upsert glossary term",
			slog.String("error", err.Error()),
			slog.String("novel_id", term.NovelID.String()),
			slog.String("term", term.Term))
		return err
	}

	log.Debug("glossary term upserted",
		slog.String("novel_id", term.NovelID.String()),
		slog.String("term", term.Term),
		slog.String("category", string(term.Category)))
	return nil
}

// ListByNovel implements store.GlossaryStore.ListByNovel
func (s *PostgresGlossaryStore) ListByNovel(
	ctx context.Context,
	novelID uuid.UUID,
) ([]*domain.GlossaryTerm, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, novel_id, term, translation, category, description,
			auto_generated, created_at, updated_at
		FROM glossary_terms
		WHERE novel_id = $1
		ORDER BY term ASC
	`

	rows, err := s.db.QueryContext(ctx, query, novelID)
	if err != nil {
		log.Error("failed to query glossary terms",
			slog.String("error", err.Error()),
			slog.String("novel_id", novelID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	terms := []*domain.GlossaryTerm{}
	for rows.Next() {
		var (
			term        domain.GlossaryTerm
			category    string
			description sql.NullString
		)
		if err := rows.Scan(
			&term.ID,
			&term.NovelID,
			&term.Term,
			&term.Translation,
			&category,
			&description,
			&term.AutoGenerated,
			&term.CreatedAt,
			&term.UpdatedAt,
		); err != nil {
			return nil, err
		}
		term.Category = domain.TermCategory(category)
		term.Description = description.String
		terms = append(terms, &term)
	}

	return terms, rows.Err()
}

// Delete implements store.GlossaryStore.Delete
func (s *PostgresGlossaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM glossary_terms WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete glossary term",
			slog.String("error", err.Error()),
			slog.String("term_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrTermNotFound
	}

	return nil
}

// DeleteBulk implements store.GlossaryStore.DeleteBulk
func (s *PostgresGlossaryStore) DeleteBulk(ctx context.Context, ids []uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM glossary_terms WHERE id = ANY($1::uuid[])`, idStrings)
	if err != nil {
		log.Error("failed to bulk delete glossary terms",
			slog.String("error", err.Error()),
			slog.Int("count", len(ids)))
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Info("glossary terms bulk deleted",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", deleted))
	return deleted, nil
}
