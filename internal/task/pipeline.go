package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// chapterResult classifies the outcome of one chapter attempt.
type chapterResult int

const (
	// resultProcessed means the chapter was fully committed and leaves
	// the queue.
	resultProcessed chapterResult = iota

	// resultSkipped means the chapter was not committed; it stays in the
	// persisted queue for a later run but this run moves on.
	resultSkipped

	// resultRateLimited means the provider rejected the current key; the
	// chapter is retried immediately after rotating keys and a flat delay.
	resultRateLimited
)

// processFunc attempts one chapter. Mutations to job (logs, counters) are
// persisted by the surrounding loop after the attempt.
type processFunc func(ctx context.Context, job *domain.Job, chapter int, keys *KeyRing) chapterResult

// runState is the frozen per-run snapshot taken at pipeline entry.
// Settings are not re-read mid-run; only the job record is.
type runState struct {
	job      *domain.Job
	novel    *domain.Novel
	settings *domain.JobSettings
	keys     *KeyRing
	pending  []int
}

// pipeline carries the loop mechanics shared by both task kinds.
type pipeline struct {
	deps   Deps
	kind   domain.JobKind
	jobID  uuid.UUID
	tuning Tuning
}

func (p *pipeline) log(ctx context.Context) *slog.Logger {
	base := p.deps.Logger
	if base == nil {
		base = slog.Default()
	}
	return logger.FromContextOrDefault(ctx, base).With(
		slog.String("job_id", p.jobID.String()),
		slog.String("kind", string(p.kind)),
	)
}

// prepare checks the entry preconditions and builds the run snapshot.
// A nil state with a nil error means there is nothing to run: the job is
// gone, not active, or was marked failed here because a precondition did
// not hold.
func (p *pipeline) prepare(ctx context.Context) (*runState, error) {
	log := p.log(ctx)

	job, err := p.deps.Jobs.GetByID(ctx, p.jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			log.Info("job record missing at start, nothing to run")
			return nil, nil
		}
		return nil, err
	}
	if job.Status != domain.JobStatusActive {
		log.Info("job is not active, skipping run",
			slog.String("status", string(job.Status)))
		return nil, nil
	}

	novel, err := p.deps.Novels.GetByID(ctx, job.NovelID)
	if err != nil {
		p.failJob(ctx, job, "الرواية المستهدفة غير موجودة")
		return nil, nil
	}

	if err := p.deps.Content.Ping(ctx); err != nil {
		p.failJob(ctx, job, "تعذر الاتصال بمخزن المحتوى")
		return nil, nil
	}

	settings, err := p.deps.Settings.GetByKind(ctx, p.kind, nil)
	if err != nil {
		p.failJob(ctx, job, "تعذر تحميل إعدادات المهمة")
		return nil, nil
	}

	// Job-level credential override wins; otherwise the shared settings
	// list. Rotation always restarts at the first key, including resumes.
	creds := job.APIKeys
	if len(creds) == 0 {
		creds = settings.APIKeys
	}
	keys, err := NewKeyRing(creds)
	if err != nil {
		p.failJob(ctx, job, "لا توجد مفاتيح واجهة برمجية متاحة للمهمة")
		return nil, nil
	}

	// The iteration order is fixed ascending here, once. Rate-limit
	// re-insertions jump the queue front without re-sorting.
	pending := slices.Clone(job.TargetChapters)
	slices.Sort(pending)

	return &runState{
		job:      job,
		novel:    novel,
		settings: settings,
		keys:     keys,
		pending:  pending,
	}, nil
}

// runLoop drives the pending chapters to exhaustion or to an external
// status change. The job record is re-read at every chapter boundary; that
// read is the sole pause/cancel checkpoint.
func (p *pipeline) runLoop(ctx context.Context, st *runState, process processFunc) error {
	log := p.log(ctx)

	limiter := rate.NewLimiter(rate.Every(p.tuning.InterChapter), 1)
	limiter.Allow() // drain the initial token so the first chapter throttles too

	for len(st.pending) > 0 {
		fresh, err := p.deps.Jobs.GetByID(ctx, p.jobID)
		if err != nil {
			if errors.Is(err, store.ErrJobNotFound) {
				// Deleted out from under us. Accepted race: stop silently.
				log.Info("job record deleted, stopping worker")
				return nil
			}
			return err
		}
		if fresh.Status != domain.JobStatusActive {
			if fresh.Status == domain.JobStatusPaused {
				fresh.AppendLog(domain.JobLogInfo, "توقفت المهمة مؤقتاً بناءً على الطلب")
				if err := p.deps.Jobs.UpdateProgress(ctx, fresh); err != nil {
					log.Error("failed to persist pause log", slog.String("error", err.Error()))
				}
				log.Info("job paused, stopping worker")
			} else {
				log.Info("job status changed externally, stopping worker",
					slog.String("status", string(fresh.Status)))
			}
			return nil
		}

		chapter := st.pending[0]
		st.pending = st.pending[1:]

		result := process(ctx, fresh, chapter, st.keys)

		switch result {
		case resultRateLimited:
			st.keys.Advance()
			fresh.AppendLog(domain.JobLogWarn, fmt.Sprintf(
				"تم تجاوز حد الاستخدام للمفتاح الحالي، جارٍ التبديل وإعادة محاولة الفصل %d", chapter))
			// Persisted queue order mirrors the retry so a crash resumes
			// at the same chapter.
			if err := fresh.MoveToFront(chapter); err != nil {
				log.Warn("chapter missing from persisted queue on retry",
					slog.Int("chapter", chapter))
			}
			if err := p.deps.Jobs.UpdateProgress(ctx, fresh); err != nil {
				log.Error("failed to persist retry progress", slog.String("error", err.Error()))
			}
			st.pending = append([]int{chapter}, st.pending...)

			select {
			case <-time.After(p.tuning.RateLimitBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}

		case resultSkipped:
			if err := p.deps.Jobs.UpdateProgress(ctx, fresh); err != nil {
				log.Error("failed to persist skip progress", slog.String("error", err.Error()))
			}

		case resultProcessed:
			if err := fresh.MarkProcessed(chapter); err != nil {
				log.Warn("processed chapter missing from persisted queue",
					slog.Int("chapter", chapter))
			}
			fresh.AppendLog(domain.JobLogInfo, fmt.Sprintf("اكتمل الفصل %d بنجاح", chapter))
			if err := p.deps.Jobs.UpdateProgress(ctx, fresh); err != nil {
				log.Error("failed to persist chapter progress", slog.String("error", err.Error()))
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	return p.finish(ctx)
}

// finish marks the job completed if it is still active after the loop
// drained. An externally mutated status is left alone.
func (p *pipeline) finish(ctx context.Context) error {
	log := p.log(ctx)

	final, err := p.deps.Jobs.GetByID(ctx, p.jobID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil
		}
		return err
	}
	if final.Status != domain.JobStatusActive {
		return nil
	}

	final.AppendLog(domain.JobLogInfo, "اكتملت المهمة بنجاح")
	if err := p.deps.Jobs.UpdateProgress(ctx, final); err != nil {
		log.Error("failed to persist completion log", slog.String("error", err.Error()))
	}
	if err := p.deps.Jobs.UpdateStatus(ctx, final.ID, domain.JobStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	log.Info("job completed",
		slog.Int("processed", final.ProcessedCount),
		slog.Int("total", final.TotalToProcess))
	return nil
}

// failJob records a configuration failure: error log entry, then the
// failed status. No retry follows.
func (p *pipeline) failJob(ctx context.Context, job *domain.Job, reason string) {
	log := p.log(ctx)

	job.AppendLog(domain.JobLogError, reason)
	if err := p.deps.Jobs.UpdateProgress(ctx, job); err != nil {
		log.Error("failed to persist failure log", slog.String("error", err.Error()))
	}
	if err := p.deps.Jobs.UpdateStatus(ctx, job.ID, domain.JobStatusFailed); err != nil {
		log.Error("failed to mark job failed", slog.String("error", err.Error()))
	}

	log.Error("job failed", slog.String("reason", reason))
}
