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

// minSourceRunes is the minimum source length worth sending to the model.
// Shorter chapters are skipped with a warning and left queued.
const minSourceRunes = 30

// extractionExcerptRunes bounds the source/translation excerpts embedded in
// the glossary extraction prompt.
const extractionExcerptRunes = 2000

// glossaryExtractionPrompt asks the model for term candidates as JSON. The
// excerpts are source then translation.
const glossaryExtractionPrompt = `استخرج من المقتطفين التاليين (النص الأصلي ثم الترجمة العربية) لرواية "%s" أسماء الشخصيات والأماكن والأغراض والرتب المهمة.
أجب بصيغة JSON فقط: مصفوفة من عناصر {"term", "translation", "category", "description"} حيث category واحدة من characters/locations/items/ranks/other.

النص الأصلي:
%s

الترجمة:
%s`

// TranslationTask translates the target chapters of one job, extracting
// glossary terms along the way.
type TranslationTask struct {
	job    *domain.Job
	deps   Deps
	tuning Tuning
}

// Ensure TranslationTask implements the Task interface
var _ Task = (*TranslationTask)(nil)

// NewTranslationTask creates the translation pipeline task for a job.
func NewTranslationTask(job *domain.Job, deps Deps) *TranslationTask {
	return &TranslationTask{job: job, deps: deps, tuning: translationTuning}
}

// ID implements Task.ID
func (t *TranslationTask) ID() uuid.UUID { return t.job.ID }

// Kind implements Task.Kind
func (t *TranslationTask) Kind() domain.JobKind { return domain.JobKindTranslation }

// Execute implements Task.Execute
func (t *TranslationTask) Execute(ctx context.Context) error {
	p := &pipeline{
		deps:   t.deps,
		kind:   domain.JobKindTranslation,
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

// processChapter runs the full translate → extract → save sequence for one
// chapter.
func (t *TranslationTask) processChapter(
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
				"نص الفصل %d غير موجود في مخزن المحتوى، تم تخطيه", chapter))
		} else {
			job.AppendLog(domain.JobLogError, fmt.Sprintf(
				"تعذرت قراءة نص الفصل %d، تم تخطيه", chapter))
		}
		return resultSkipped
	}

	source := strings.TrimSpace(doc.Content)
	if utf8.RuneCountInString(source) < minSourceRunes {
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"نص الفصل %d قصير جداً، تم تخطيه", chapter))
		return resultSkipped
	}

	prompt := renderPrompt(st.settings.PromptTemplate, st.novel.Title, chapter,
		t.glossaryContext(ctx, st.novel.ID)) + "\n\n" + source

	translated, err := t.deps.Generator.Generate(ctx, generation.Request{
		Model:  st.settings.ModelName,
		APIKey: keys.Current(),
		Prompt: prompt,
	})
	if err != nil {
		if generation.IsRateLimited(err) {
			return resultRateLimited
		}
		job.AppendLog(domain.JobLogError, fmt.Sprintf(
			"فشلت ترجمة الفصل %d: %s", chapter, redact.Error(err)))
		return resultSkipped
	}

	title := DeriveChapterTitle(translated, chapter)

	// Second pass: glossary extraction. Its failure never rolls back the
	// translation; the chapter is saved degraded with the fallback title.
	if err := t.extractGlossary(ctx, st, keys, chapter, source, translated); err != nil {
		log.Warn("glossary extraction failed", slog.String("error", redact.Error(err)))
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"فشل استخراج مصطلحات الفصل %d، سيُحفظ النص دون المصطلحات", chapter))
		title = FallbackChapterTitle(chapter)
	}

	if err := t.saveChapter(ctx, st.novel.ID, chapter, translated, title); err != nil {
		log.Error("chapter save failed, attempting content-only fallback",
			slog.String("error", err.Error()))
		if err := t.saveContentOnly(ctx, st.novel.ID, chapter, translated); err != nil {
			job.AppendLog(domain.JobLogError, fmt.Sprintf(
				"فشل حفظ الفصل %d بعد الترجمة", chapter))
			return resultSkipped
		}
		job.AppendLog(domain.JobLogWarn, fmt.Sprintf(
			"حُفظ نص الفصل %d فقط بعد تعذر الحفظ الكامل", chapter))
	}

	// Publishing side effect: the first translated chapter takes a private
	// novel public.
	if st.novel.Status == domain.NovelStatusPrivate {
		if err := t.deps.Novels.UpdateStatus(ctx, st.novel.ID, domain.NovelStatusOngoing); err != nil {
			log.Warn("failed to publish novel", slog.String("error", err.Error()))
		} else {
			st.novel.Status = domain.NovelStatusOngoing
		}
	}

	return resultProcessed
}

// glossaryContext renders the novel's stored terms as prompt context.
func (t *TranslationTask) glossaryContext(ctx context.Context, novelID uuid.UUID) string {
	terms, err := t.deps.Glossary.ListByNovel(ctx, novelID)
	if err != nil || len(terms) == 0 {
		return "لا توجد مصطلحات بعد"
	}

	var b strings.Builder
	for _, term := range terms {
		fmt.Fprintf(&b, "%s = %s (%s)\n", term.Term, term.Translation, term.Category)
	}
	return strings.TrimSpace(b.String())
}

// extractGlossary makes the second generation call and upserts the parsed
// terms. The key index advances unconditionally first so the extraction
// call spreads quota across the ring.
func (t *TranslationTask) extractGlossary(
	ctx context.Context,
	st *runState,
	keys *KeyRing,
	chapter int,
	source, translated string,
) error {
	keys.Advance()

	prompt := fmt.Sprintf(glossaryExtractionPrompt,
		st.novel.Title,
		excerpt(source, extractionExcerptRunes),
		excerpt(translated, extractionExcerptRunes),
	)

	raw, err := t.deps.Generator.Generate(ctx, generation.Request{
		Model:  st.settings.ModelName,
		APIKey: keys.Current(),
		Prompt: prompt,
	})
	if err != nil {
		return err
	}

	candidates, err := ParseGlossaryPayload(raw)
	if err != nil {
		return err
	}

	log := t.deps.Logger
	if log == nil {
		log = slog.Default()
	}
	for _, c := range candidates {
		term, err := domain.NewGlossaryTerm(st.novel.ID, c.Term, c.Translation,
			domain.TermCategory(c.Category), c.Description, true)
		if err != nil {
			// Incomplete candidate, ignore it rather than failing the batch.
			continue
		}
		if err := t.deps.Glossary.Upsert(ctx, term); err != nil {
			log.Warn("glossary upsert failed",
				slog.String("term", term.Term),
				slog.Int("chapter", chapter),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// saveChapter commits the full result: content+title to the document
// store, title+timestamp to the chapter metadata mirror.
func (t *TranslationTask) saveChapter(ctx context.Context, novelID uuid.UUID, chapter int, content, title string) error {
	now := time.Now().UTC()
	if err := t.deps.Content.SetChapter(ctx, novelID, chapter, contentstore.ChapterPatch{
		Content:     &content,
		Title:       &title,
		LastUpdated: &now,
	}); err != nil {
		return err
	}
	return t.deps.Novels.UpsertChapterTitle(ctx, novelID, chapter, title)
}

// saveContentOnly is the degraded fallback when the full save fails.
func (t *TranslationTask) saveContentOnly(ctx context.Context, novelID uuid.UUID, chapter int, content string) error {
	now := time.Now().UTC()
	return t.deps.Content.SetChapter(ctx, novelID, chapter, contentstore.ChapterPatch{
		Content:     &content,
		LastUpdated: &now,
	})
}
