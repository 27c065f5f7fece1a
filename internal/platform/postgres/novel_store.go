package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// PostgresNovelStore implements the store.NovelStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNovelStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNovelStore creates a new PostgreSQL implementation of the
// NovelStore interface. If logger is nil, a default logger will be used.
func NewPostgresNovelStore(db store.DBTX, logger *slog.Logger) *PostgresNovelStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNovelStore{
		db:     db,
		logger: logger.With(slog.String("component", "novel_store")),
	}
}

// Ensure PostgresNovelStore implements store.NovelStore interface
var _ store.NovelStore = (*PostgresNovelStore)(nil)

// WithTx returns a new NovelStore instance that uses the provided transaction.
func (s *PostgresNovelStore) WithTx(tx *sql.Tx) store.NovelStore {
	return &PostgresNovelStore{db: tx, logger: s.logger}
}

// GetByID implements store.NovelStore.GetByID
func (s *PostgresNovelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Novel, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, cover_url, status, created_at, updated_at
		FROM novels
		WHERE id = $1
	`

	var (
		novel  domain.Novel
		cover  sql.NullString
		status string
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&novel.ID,
		&novel.Title,
		&cover,
		&status,
		&novel.CreatedAt,
		&novel.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("novel not found", slog.String("novel_id", id.String()))
			return nil, store.ErrNovelNotFound
		}
		log.Error("failed to get novel by ID",
			slog.String("error", err.Error()),
			slog.String("novel_id", id.String()))
		return nil, err
	}

	novel.CoverURL = cover.String
	novel.Status = domain.NovelStatus(status)
	return &novel, nil
}

// List implements store.NovelStore.List
func (s *PostgresNovelStore) List(ctx context.Context, limit, offset int) ([]*domain.Novel, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, title, cover_url, status, created_at, updated_at
		FROM novels
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.Error("failed to query novels", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	novels := []*domain.Novel{}
	for rows.Next() {
		var (
			novel  domain.Novel
			cover  sql.NullString
			status string
		)
		if err := rows.Scan(
			&novel.ID,
			&novel.Title,
			&cover,
			&status,
			&novel.CreatedAt,
			&novel.UpdatedAt,
		); err != nil {
			return nil, err
		}
		novel.CoverURL = cover.String
		novel.Status = domain.NovelStatus(status)
		novels = append(novels, &novel)
	}

	return novels, rows.Err()
}

// UpdateStatus implements store.NovelStore.UpdateStatus
func (s *PostgresNovelStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.NovelStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE novels
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update novel status",
			slog.String("error", err.Error()),
			slog.String("novel_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrNovelNotFound
	}

	log.Info("novel status updated",
		slog.String("novel_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// ListChapterNumbers implements store.NovelStore.ListChapterNumbers
func (s *PostgresNovelStore) ListChapterNumbers(ctx context.Context, novelID uuid.UUID) ([]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT number
		FROM chapters
		WHERE novel_id = $1
		ORDER BY number ASC
	`

	rows, err := s.db.QueryContext(ctx, query, novelID)
	if err != nil {
		log.Error("failed to query chapter numbers",
			slog.String("error", err.Error()),
			slog.String("novel_id", novelID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	numbers := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}

	return numbers, rows.Err()
}

// UpsertChapterTitle implements store.NovelStore.UpsertChapterTitle
func (s *PostgresNovelStore) UpsertChapterTitle(
	ctx context.Context,
	novelID uuid.UUID,
	number int,
	title string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO chapters (novel_id, number, title, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (novel_id, number)
		DO UPDATE SET title = EXCLUDED.title, updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, novelID, number, title, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNovelNotFound
		}
		log.Error("failed to upsert chapter title",
			slog.String("error", err.Error()),
			slog.String("novel_id", novelID.String()),
			slog.Int("chapter", number))
		return err
	}

	log.Debug("chapter title upserted",
		slog.String("novel_id", novelID.String()),
		slog.Int("chapter", number))
	return nil
}
