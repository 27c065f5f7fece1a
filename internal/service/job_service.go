package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/task"
	"github.com/google/uuid"
)

// TaskSubmitter is the slice of the runner the supervisor needs.
// Satisfied by *task.Runner.
type TaskSubmitter interface {
	Submit(t task.Task) error
}

// StartJobParams describes a job start request. Exactly one selector form
// must be set: All, Chapters, or FromChapter. ResumeJobID short-circuits
// into a resume of that job instead of creating a new one.
type StartJobParams struct {
	NovelID     uuid.UUID
	All         bool
	Chapters    []int
	FromChapter int
	APIKeys     []string
	ResumeJobID *uuid.UUID
}

// JobService is the supervisor for pipeline jobs: it creates, pauses,
// resumes and deletes job records and hands runnable tasks to the runner.
// It only ever writes the status field of existing jobs; progress and log
// fields belong to the worker.
type JobService struct {
	jobs    store.JobStore
	novels  store.NovelStore
	db      *sql.DB
	factory task.TaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

// NewJobService creates a JobService. If lg is nil, a default logger will
// be used.
func NewJobService(
	jobs store.JobStore,
	novels store.NovelStore,
	db *sql.DB,
	factory task.TaskFactory,
	runner TaskSubmitter,
	lg *slog.Logger,
) *JobService {
	if lg == nil {
		lg = slog.Default()
	}
	return &JobService{
		jobs:    jobs,
		novels:  novels,
		db:      db,
		factory: factory,
		runner:  runner,
		logger:  lg.With(slog.String("component", "job_service")),
	}
}

// Start creates a job of the given kind and schedules its pipeline run.
// The call returns as soon as the job is queued; progress is observable
// only through the job record.
func (s *JobService) Start(ctx context.Context, kind domain.JobKind, params StartJobParams) (uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if params.ResumeJobID != nil {
		if err := s.Resume(ctx, kind, *params.ResumeJobID); err != nil {
			return uuid.Nil, err
		}
		return *params.ResumeJobID, nil
	}

	novel, err := s.novels.GetByID(ctx, params.NovelID)
	if err != nil {
		return uuid.Nil, err
	}

	chapters, err := s.resolveSelector(ctx, novel.ID, params)
	if err != nil {
		return uuid.Nil, err
	}

	job, err := domain.NewJob(kind, novel, chapters, params.APIKeys)
	if err != nil {
		return uuid.Nil, err
	}

	// Use a transaction for the job creation
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.jobs.WithTx(tx).Create(ctx, job)
	})
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.submit(ctx, job); err != nil {
		return uuid.Nil, err
	}

	log.Info("job started",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", string(kind)),
		slog.String("novel_id", novel.ID.String()),
		slog.Int("chapters", len(chapters)))
	return job.ID, nil
}

// resolveSelector expands the chapter selector into a concrete list.
func (s *JobService) resolveSelector(ctx context.Context, novelID uuid.UUID, params StartJobParams) ([]int, error) {
	selectors := 0
	if params.All {
		selectors++
	}
	if len(params.Chapters) > 0 {
		selectors++
	}
	if params.FromChapter > 0 {
		selectors++
	}
	if selectors != 1 {
		return nil, ErrInvalidSelector
	}

	if len(params.Chapters) > 0 {
		return params.Chapters, nil
	}

	known, err := s.novels.ListChapterNumbers(ctx, novelID)
	if err != nil {
		return nil, err
	}

	var chapters []int
	for _, n := range known {
		if params.All || n >= params.FromChapter {
			chapters = append(chapters, n)
		}
	}
	if len(chapters) == 0 {
		return nil, ErrNoChaptersSelected
	}
	return chapters, nil
}

// Pause flips an active job to paused. The worker honors it at its next
// chapter boundary; the acknowledgement is asynchronous by design. The
// status check and write share a transaction so a concurrent completion
// cannot slip between them.
func (s *JobService) Pause(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		job, err := s.getKinded(ctx, txJobs, kind, id)
		if err != nil {
			return err
		}
		if !job.CanTransitionTo(domain.JobStatusPaused) {
			return ErrJobNotPausable
		}
		return txJobs.UpdateStatus(ctx, id, domain.JobStatusPaused)
	})
}

// Resume flips a paused job back to active and re-submits its pipeline.
// The persisted target queue makes the run pick up exactly the chapters
// that were never committed.
func (s *JobService) Resume(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	var job *domain.Job
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		j, err := s.getKinded(ctx, txJobs, kind, id)
		if err != nil {
			return err
		}
		if !j.CanTransitionTo(domain.JobStatusActive) {
			return ErrJobNotResumable
		}
		if err := txJobs.UpdateStatus(ctx, id, domain.JobStatusActive); err != nil {
			return err
		}
		j.Status = domain.JobStatusActive
		job = j
		return nil
	})
	if err != nil {
		return err
	}

	// Queue only after the status write is committed.
	return s.submit(ctx, job)
}

// Delete removes a job record. An in-flight worker is not signalled: it
// notices the missing record at its next checkpoint and stops silently.
func (s *JobService) Delete(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txJobs := s.jobs.WithTx(tx)
		if _, err := s.getKinded(ctx, txJobs, kind, id); err != nil {
			return err
		}
		return txJobs.Delete(ctx, id)
	})
}

// List returns all jobs of a kind, newest first.
func (s *JobService) List(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error) {
	return s.jobs.ListByKind(ctx, kind)
}

// Get returns the full job record including logs and queue state.
func (s *JobService) Get(ctx context.Context, kind domain.JobKind, id uuid.UUID) (*domain.Job, error) {
	return s.getKinded(ctx, s.jobs, kind, id)
}

// getKinded loads a job through the given store (plain or transaction
// scoped) and hides records of the other kind, so the two symmetric API
// surfaces cannot reach across.
func (s *JobService) getKinded(ctx context.Context, jobs store.JobStore, kind domain.JobKind, id uuid.UUID) (*domain.Job, error) {
	job, err := jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Kind != kind {
		return nil, store.ErrJobNotFound
	}
	return job, nil
}

// submit hands the job to the runner; a full queue marks the job failed
// so it does not linger active without a worker.
func (s *JobService) submit(ctx context.Context, job *domain.Job) error {
	t, err := s.factory.NewTask(job)
	if err != nil {
		return err
	}
	if err := s.runner.Submit(t); err != nil {
		s.logger.Error("failed to queue job",
			slog.String("job_id", job.ID.String()),
			slog.String("error", err.Error()))
		job.AppendLog(domain.JobLogError, "تعذر جدولة المهمة، قائمة الانتظار ممتلئة")
		if uerr := s.jobs.UpdateProgress(ctx, job); uerr != nil {
			s.logger.Error("failed to persist queue-full log", slog.String("error", uerr.Error()))
		}
		if uerr := s.jobs.UpdateStatus(ctx, job.ID, domain.JobStatusFailed); uerr != nil {
			s.logger.Error("failed to mark unqueued job failed", slog.String("error", uerr.Error()))
		}
		return fmt.Errorf("%w: %v", ErrJobQueueFull, err)
	}
	return nil
}
