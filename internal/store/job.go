package store

import (
	"context"
	"database/sql"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/google/uuid"
)

// JobStore defines the interface for job record persistence.
//
// The worker and the supervisor coordinate exclusively through this store:
// the worker re-reads the record at every chapter boundary and writes
// progress/log fields; the supervisor writes the status field only.
type JobStore interface {
	// Create saves a new job record.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a job by its unique ID.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// UpdateProgress persists the worker-owned fields of a job: target
	// queue, counters, current chapter, logs and updated_at. The status
	// column is deliberately not touched so a concurrent pause request
	// is never overwritten by a progress write.
	UpdateProgress(ctx context.Context, job *domain.Job) error

	// UpdateStatus sets only the status column (supervisor-owned field).
	// Returns ErrJobNotFound if the job does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error

	// Delete removes a job record.
	// Returns ErrJobNotFound if the job does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByKind retrieves all jobs of the given kind ordered by start
	// time descending. Logs and target queues are included; API-level
	// projections trim them.
	ListByKind(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error)

	// FindByStatus retrieves jobs of the given kind and status, used at
	// startup to recover runs interrupted by a crash.
	FindByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)

	// WithTx returns a new JobStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) JobStore
}
