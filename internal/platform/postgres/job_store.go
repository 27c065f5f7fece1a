package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// PostgresJobStore implements the store.JobStore interface using a
// PostgreSQL database as the storage backend.
type PostgresJobStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// JobStore interface. If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresJobStore{
		db:     db,
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements store.JobStore interface
var _ store.JobStore = (*PostgresJobStore)(nil)

// WithTx returns a new JobStore instance that uses the provided transaction.
func (s *PostgresJobStore) WithTx(tx *sql.Tx) store.JobStore {
	return &PostgresJobStore{db: tx, logger: s.logger}
}

// Create implements store.JobStore.Create
func (s *PostgresJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	targets, logs, keys, err := marshalJobColumns(job)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO jobs (id, kind, novel_id, novel_title, novel_cover, status,
			target_chapters, processed_count, total_to_process, current_chapter,
			logs, api_keys, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.Kind,
		job.NovelID,
		job.NovelTitle,
		job.NovelCover,
		job.Status,
		targets,
		job.ProcessedCount,
		job.TotalToProcess,
		job.CurrentChapter,
		logs,
		keys,
		job.StartedAt,
		job.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: novel with ID %s not found",
				store.ErrInvalidEntity, job.NovelID)
		}
		log.Error("failed to create job",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	log.Info("job created",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(job.Kind)),
		slog.Int("total_to_process", job.TotalToProcess))
	return nil
}

// GetByID implements store.JobStore.GetByID
func (s *PostgresJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, kind, novel_id, novel_title, novel_cover, status,
			target_chapters, processed_count, total_to_process, current_chapter,
			logs, api_keys, started_at, updated_at
		FROM jobs
		WHERE id = $1
	`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("job not found", slog.String("job_id", id.String()))
			return nil, store.ErrJobNotFound
		}
		log.Error("failed to get job by ID",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return nil, err
	}

	return job, nil
}

// UpdateProgress implements store.JobStore.UpdateProgress.
// Only worker-owned fields are written; status stays untouched so a
// concurrent pause is never lost to a progress write.
func (s *PostgresJobStore) UpdateProgress(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	targets, logs, _, err := marshalJobColumns(job)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET target_chapters = $1, processed_count = $2, current_chapter = $3,
			logs = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		targets,
		job.ProcessedCount,
		job.CurrentChapter,
		logs,
		time.Now().UTC(),
		job.ID,
	)
	if err != nil {
		log.Error("failed to update job progress",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrJobNotFound
	}

	return nil
}

// UpdateStatus implements store.JobStore.UpdateStatus
func (s *PostgresJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE jobs
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update job status",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		log.Debug("job not found for status update", slog.String("job_id", id.String()))
		return store.ErrJobNotFound
	}

	log.Info("job status updated",
		slog.String("job_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// Delete implements store.JobStore.Delete
func (s *PostgresJobStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete job",
			slog.String("error", err.Error()),
			slog.String("job_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrJobNotFound
	}

	log.Info("job deleted", slog.String("job_id", id.String()))
	return nil
}

// ListByKind implements store.JobStore.ListByKind
func (s *PostgresJobStore) ListByKind(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error) {
	query := `
		SELECT id, kind, novel_id, novel_title, novel_cover, status,
			target_chapters, processed_count, total_to_process, current_chapter,
			logs, api_keys, started_at, updated_at
		FROM jobs
		WHERE kind = $1
		ORDER BY started_at DESC
	`
	return s.queryJobs(ctx, query, kind)
}

// FindByStatus implements store.JobStore.FindByStatus
func (s *PostgresJobStore) FindByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	query := `
		SELECT id, kind, novel_id, novel_title, novel_cover, status,
			target_chapters, processed_count, total_to_process, current_chapter,
			logs, api_keys, started_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY started_at ASC
	`
	return s.queryJobs(ctx, query, status)
}

// queryJobs runs a multi-row job query and scans the results.
func (s *PostgresJobStore) queryJobs(ctx context.Context, query string, args ...any) ([]*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	jobs := []*domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			log.Error("failed to scan job row", slog.String("error", err.Error()))
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob scans one job row including its jsonb columns.
func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job     domain.Job
		kind    string
		status  string
		cover   sql.NullString
		targets []byte
		logs    []byte
		keys    []byte
	)

	err := row.Scan(
		&job.ID,
		&kind,
		&job.NovelID,
		&job.NovelTitle,
		&cover,
		&status,
		&targets,
		&job.ProcessedCount,
		&job.TotalToProcess,
		&job.CurrentChapter,
		&logs,
		&keys,
		&job.StartedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	job.Kind = domain.JobKind(kind)
	job.Status = domain.JobStatus(status)
	job.NovelCover = cover.String

	if err := json.Unmarshal(targets, &job.TargetChapters); err != nil {
		return nil, fmt.Errorf("failed to decode target chapters: %w", err)
	}
	if err := json.Unmarshal(logs, &job.Logs); err != nil {
		return nil, fmt.Errorf("failed to decode job logs: %w", err)
	}
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &job.APIKeys); err != nil {
			return nil, fmt.Errorf("failed to decode job api keys: %w", err)
		}
	}

	return &job, nil
}

// marshalJobColumns encodes the jsonb columns of a job row.
func marshalJobColumns(job *domain.Job) (targets, logs, keys []byte, err error) {
	targets, err = json.Marshal(job.TargetChapters)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode target chapters: %w", err)
	}
	logs, err = json.Marshal(job.Logs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode job logs: %w", err)
	}
	if job.APIKeys != nil {
		keys, err = json.Marshal(job.APIKeys)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode job api keys: %w", err)
		}
	}
	return targets, logs, keys, nil
}
