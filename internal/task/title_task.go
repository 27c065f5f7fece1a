package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/generation"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/contentstore"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/redact"
	"github.com/google/uuid"
)

// titleExcerptRunes bounds the chapter excerpt sent to the model; the full
// text is unnecessary for picking a title.
const titleExcerptRunes = 1200

// TitleGenerationTask generates a title for each target chapter of one
// job from an excerpt of its content.
type TitleGenerationTask struct {
	job    *domain.Job
	deps   Deps
	tuning Tuning
}

// Ensure TitleGenerationTask implements the Task interface
var _ Task = (*TitleGenerationTask)(nil)

// NewTitleGenerationTask creates the title pipeline task for a job.
func NewTitleGenerationTask(job *domain.Job, deps Deps) *TitleGenerationTask {
	return &TitleGenerationTask{job: job, deps: deps, tuning: titleTuning}
}

// ID implements Task.ID
func (t *TitleGenerationTask) ID() uuid.UUID { return t.job.ID }

// Kind implements Task.Kind
func (t *TitleGenerationTask) Kind() domain.JobKind { return domain.JobKindTitleGeneration }

// Execute implements Task.Execute
func (t *TitleGenerationTask) Execute(ctx context.Context) error {
	p := &pipeline{
		deps:   t.deps,
		kind:   domain.JobKindTitleGeneration,
		jobID:  t.job.ID,
		tuning: t.tuning,
	}

	st, err := p.prepare(ctx)
	if err != nil || st == nil {
		return err
	}

	return p.runLoop(ctx, st, func(ctx context.Context, job *domain.Job, chapter int, keys *KeyRing) chapterResult {
		return t.processChapter(ctx, p, st, job, chapter, keys)
	})
}

// processChapter generates and commits a title for one chapter.
func (t *TitleGenerationTask) processChapter(
	ctx context.Context,
	p *pipeline,
	st *runState,
	job *domain.Job,
	chapter int,
	keys *KeyRing,
) chapterResult {
	log := p.log(ctx).With(slog.Int("chapter", chapter))

	doc, err := t.deps.Content.GetChapter(ctx, st.novel.ID, chapter)
	if err != nil {
		if errors.Is(err, contentstore.ErrChapterMissing) {
			job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
				"نص الفصل %d غير موجود، تُرك في قائمة الانتظار", chapter))
		} else {
			job.AppendLog(domain.JobLogError, fmt.Sprintf(
				"تعذرت قراءة نص الفصل %d، تم تخطيه", chapter))
		}
		return resultSkipped
	}

	content := strings.TrimSpace(doc.Content)
	if utf8.RuneCountInString(content) < minSourceRunes {
		// Left queued for a manual retry once content exists.
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"نص الفصل %d قصير جداً لتوليد عنوان، تم تخطيه", chapter))
		return resultSkipped
	}

	prompt := renderPrompt(st.settings.PromptTemplate, st.novel.Title, chapter, "") +
		"\n\n" + excerpt(content, titleExcerptRunes)

	raw, err := t.deps.Generator.Generate(ctx, generation.Request{
		Model:  st.settings.ModelName,
		APIKey: keys.Current(),
		Prompt: prompt,
	})
	if err != nil {
		if generation.IsRateLimited(err) {
			return resultRateLimited
		}
		job.AppendLog(domain.JobLogError, fmt.Sprintf(
			"فشل توليد عنوان الفصل %d: %s", chapter, redact.Error(err)))
		return resultSkipped
	}

	title := CleanGeneratedTitle(raw, chapter)

	now := time.Now().UTC()
	if err := t.deps.Content.SetChapter(ctx, st.novel.ID, chapter, contentstore.ChapterPatch{
		Title:       &title,
		LastUpdated: &now,
	}); err != nil {
		log.Warn("title save to content store failed", slog.String("error", err.Error()))
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"تعذر حفظ عنوان الفصل %d، تُرك في قائمة الانتظار", chapter))
		return resultSkipped
	}
	if err := t.deps.Novels.UpsertChapterTitle(ctx, st.novel.ID, chapter, title); err != nil {
		log.Warn("title save to metadata failed", slog.String("error", err.Error()))
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"تعذر حفظ بيانات عنوان الفصل %d، تُرك في قائمة الانتظار", chapter))
		return resultSkipped
	}

	return resultProcessed
}
