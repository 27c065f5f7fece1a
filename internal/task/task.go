package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/generation"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/contentstore"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// Task represents one background pipeline run over a job record.
type Task interface {
	// ID returns the job this task drives.
	ID() uuid.UUID

	// Kind returns the pipeline kind.
	Kind() domain.JobKind

	// Execute runs the pipeline. A returned error means the run aborted
	// unexpectedly; expected per-chapter failures are absorbed into the
	// job record's logs instead.
	Execute(ctx context.Context) error
}

// ContentStore is the slice of the document store API the pipelines need.
// Satisfied by *contentstore.Client.
type ContentStore interface {
	Ping(ctx context.Context) error
	GetChapter(ctx context.Context, novelID uuid.UUID, number int) (*contentstore.ChapterDocument, error)
	SetChapter(ctx context.Context, novelID uuid.UUID, number int, patch contentstore.ChapterPatch) error
}

// Deps bundles the collaborators a pipeline task needs.
type Deps struct {
	Jobs      store.JobStore
	Novels    store.NovelStore
	Glossary  store.GlossaryStore
	Settings  store.SettingsStore
	Content   ContentStore
	Generator generation.Generator
	Logger    *slog.Logger
}

// Tuning holds the per-kind pacing knobs. The rate-limit backoff is a flat
// delay between retries of the same chapter; the inter-chapter interval
// throttles provider usage regardless of chapter outcome.
type Tuning struct {
	RateLimitBackoff time.Duration
	InterChapter     time.Duration
}

// Production pacing per pipeline kind.
var (
	translationTuning = Tuning{
		RateLimitBackoff: 5 * time.Second,
		InterChapter:     2 * time.Second,
	}
	titleTuning = Tuning{
		RateLimitBackoff: 3 * time.Second,
		InterChapter:     1500 * time.Millisecond,
	}
)

// PipelineFactory builds pipeline tasks from job records. It implements
// the Runner's TaskFactory and is what the supervisor uses when starting
// or resuming a job.
type PipelineFactory struct {
	deps Deps
}

// NewPipelineFactory creates a factory over the given collaborators.
func NewPipelineFactory(deps Deps) *PipelineFactory {
	return &PipelineFactory{deps: deps}
}

// NewTask builds the pipeline task matching the job's kind.
func (f *PipelineFactory) NewTask(job *domain.Job) (Task, error) {
	switch job.Kind {
	case domain.JobKindTranslation:
		return NewTranslationTask(job, f.deps), nil
	case domain.JobKindTitleGeneration:
		return NewTitleGenerationTask(job, f.deps), nil
	default:
		return nil, domain.ErrInvalidJobKind
	}
}
