package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// UpsertTermParams describes an operator-entered glossary term.
type UpsertTermParams struct {
	NovelID     uuid.UUID
	Term        string
	Translation string
	Category    string
	Description string
}

// GlossaryService manages the per-novel term store the translation
// pipeline uses as context.
type GlossaryService struct {
	glossary store.GlossaryStore
	novels   store.NovelStore
	db       *sql.DB
	logger   *slog.Logger
}

// NewGlossaryService creates a GlossaryService. If lg is nil, a default
// logger will be used.
func NewGlossaryService(glossary store.GlossaryStore, novels store.NovelStore, db *sql.DB, lg *slog.Logger) *GlossaryService {
	if lg == nil {
		lg = slog.Default()
	}
	return &GlossaryService{
		glossary: glossary,
		novels:   novels,
		db:       db,
		logger:   lg.With(slog.String("component", "glossary_service")),
	}
}

// List returns all terms for a novel.
func (s *GlossaryService) List(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error) {
	if _, err := s.novels.GetByID(ctx, novelID); err != nil {
		return nil, err
	}
	return s.glossary.ListByNovel(ctx, novelID)
}

// Upsert writes an operator-entered term. The (novel, term) key makes the
// operation idempotent; re-submitting the same payload changes nothing but
// the updated_at stamp. Operator terms are marked manual, though a later
// automatic extraction of the same term will overwrite them.
func (s *GlossaryService) Upsert(ctx context.Context, params UpsertTermParams) (*domain.GlossaryTerm, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	term, err := domain.NewGlossaryTerm(
		params.NovelID,
		params.Term,
		params.Translation,
		domain.TermCategory(params.Category),
		params.Description,
		false,
	)
	if err != nil {
		return nil, err
	}

	// The novel existence check and the write share a transaction so the
	// term cannot land on a novel deleted in between.
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := s.novels.WithTx(tx).GetByID(ctx, params.NovelID); err != nil {
			return err
		}
		return s.glossary.WithTx(tx).Upsert(ctx, term)
	})
	if err != nil {
		return nil, err
	}

	log.Info("glossary term saved",
		slog.String("novel_id", params.NovelID.String()),
		slog.String("term", term.Term))
	return term, nil
}

// Delete removes one term.
func (s *GlossaryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.glossary.Delete(ctx, id)
}

// BulkDelete removes the listed terms and reports how many existed.
func (s *GlossaryService) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.glossary.DeleteBulk(ctx, ids)
}
