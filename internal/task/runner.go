package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/redact"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// TaskFactory builds a runnable task from a persisted job record. Used on
// startup recovery to reconstruct pipelines for jobs that were active when
// the process died.
type TaskFactory interface {
	NewTask(job *domain.Job) (Task, error)
}

// RunnerConfig holds configuration for the job runner
type RunnerConfig struct {
	// WorkerCount determines how many jobs run concurrently
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background job processing: a buffered in-memory queue
// consumed by a fixed worker pool. Submission is fire-and-forget; the job
// record is the only progress channel back to callers.
type Runner struct {
	jobs       store.JobStore
	factory    TaskFactory
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger
}

// NewRunner creates a new Runner. If logger is nil, a default logger will
// be used.
func NewRunner(jobs store.JobStore, factory TaskFactory, config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultRunnerConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		jobs:       jobs,
		factory:    factory,
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With(slog.String("component", "job_runner")),
	}
}

// Submit adds a task to the queue. The job record must already be
// persisted; Submit returns immediately without waiting for execution.
func (r *Runner) Submit(task Task) error {
	select {
	case r.taskChan <- task:
		r.logger.Debug("task queued",
			slog.String("job_id", task.ID().String()),
			slog.String("kind", string(task.Kind())))
		return nil
	default:
		return fmt.Errorf("job queue is full, try again later")
	}
}

// Start recovers interrupted jobs and begins the worker pool.
func (r *Runner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	return nil
}

// Stop gracefully shuts down the runner. In-flight pipelines observe the
// cancellation at their next I/O boundary; their jobs stay active and are
// re-queued by Recover on the next start.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover re-queues jobs that were still active when the previous process
// stopped. The target-chapter queue persisted on each record makes this a
// plain re-submit: the pipeline picks up exactly the chapters that were
// not yet committed.
func (r *Runner) Recover() error {
	ctx := context.Background()

	active, err := r.jobs.FindByStatus(ctx, domain.JobStatusActive)
	if err != nil {
		return fmt.Errorf("failed to find active jobs: %w", err)
	}

	r.logger.Info("recovering interrupted jobs", slog.Int("count", len(active)))

	for _, job := range active {
		task, err := r.factory.NewTask(job)
		if err != nil {
			r.logger.Error("failed to rebuild task for job",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		if err := r.Submit(task); err != nil {
			r.logger.Error("failed to requeue recovered job",
				slog.String("job_id", job.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// worker consumes tasks from the queue until shutdown.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.taskChan:
			if !ok {
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask executes a single pipeline run, converting panics and
// unexpected errors into a failed job status.
func (r *Runner) processTask(task Task, workerID int) {
	log := r.logger.With(
		slog.String("job_id", task.ID().String()),
		slog.String("kind", string(task.Kind())),
		slog.Int("worker_id", workerID),
	)

	defer func() {
		if p := recover(); p != nil {
			log.Error("panic during job execution", slog.Any("panic", p))
			r.markFailed(task.ID(), fmt.Sprintf("%v", p))
		}
	}()

	log.Info("processing job")

	err := task.Execute(r.ctx)
	switch {
	case err == nil:
		log.Info("job run finished")
	case errors.Is(err, context.Canceled):
		// Shutdown, not failure: the job stays active for recovery.
		log.Info("job run interrupted by shutdown")
	default:
		log.Error("job run aborted", slog.String("error", redact.Error(err)))
		r.markFailed(task.ID(), redact.Error(err))
	}
}

// markFailed flags a job as failed after an unexpected abort. Per-chapter
// work already committed is not undone.
func (r *Runner) markFailed(jobID uuid.UUID, reason string) {
	ctx := context.Background()

	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		if !errors.Is(err, store.ErrJobNotFound) {
			r.logger.Error("failed to load job for failure marking",
				slog.String("job_id", jobID.String()),
				slog.String("error", err.Error()))
		}
		return
	}

	job.AppendLog(domain.JobLogError, "فشلت المهمة بشكل غير متوقع: "+reason)
	if err := r.jobs.UpdateProgress(ctx, job); err != nil {
		r.logger.Error("failed to persist failure log",
			slog.String("job_id", jobID.String()),
			slog.String("error", err.Error()))
	}
	if err := r.jobs.UpdateStatus(ctx, jobID, domain.JobStatusFailed); err != nil {
		r.logger.Error("failed to mark job failed",
			slog.String("job_id", jobID.String()),
			slog.String("error", err.Error()))
	}
}
