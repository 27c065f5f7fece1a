package task

import (
	"context"
	"errors"
	"testing"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/generation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleFixture struct {
	jobs    *fakeJobStore
	novels  *fakeNovelStore
	content *fakeContentStore
	gen     *fakeGenerator
	novel   *domain.Novel
	job     *domain.Job
	task    *TitleGenerationTask
}

func newTitleFixture(t *testing.T, chapters []int, docs map[int]string) *titleFixture {
	t.Helper()

	novel := &domain.Novel{
		ID:     uuid.New(),
		Title:  "مدينة الضباب",
		Status: domain.NovelStatusOngoing,
	}

	job, err := domain.NewJob(domain.JobKindTitleGeneration, novel, chapters, nil)
	require.NoError(t, err)

	f := &titleFixture{
		jobs:    newFakeJobStore(job),
		novels:  newFakeNovelStore(novel),
		content: newFakeContentStore(docs),
		novel:   novel,
		job:     job,
	}

	f.gen = &fakeGenerator{generateFn: func(req generation.Request) (string, error) {
		return `"نهاية البداية"`, nil
	}}

	f.task = &TitleGenerationTask{
		job: job,
		deps: Deps{
			Jobs:      f.jobs,
			Novels:    f.novels,
			Glossary:  newFakeGlossaryStore(),
			Settings:  &fakeSettingsStore{apiKeys: []string{"key-1", "key-2"}},
			Content:   f.content,
			Generator: f.gen,
		},
		tuning: fastTuning,
	}

	return f
}

func TestTitlePipelineHappyPath(t *testing.T) {
	f := newTitleFixture(t, []int{4}, map[int]string{4: longSource})
	f.gen.generateFn = func(req generation.Request) (string, error) {
		return `"الفصل 4: نهاية البداية"`, nil
	}

	require.NoError(t, f.task.Execute(context.Background()))

	final := f.jobs.mustGet(f.job.ID)
	assert.Equal(t, domain.JobStatusCompleted, final.Status)
	assert.Equal(t, 1, final.ProcessedCount)
	assert.Empty(t, final.TargetChapters)

	// Quotes and the redundant chapter prefix are stripped.
	assert.Equal(t, "نهاية البداية", f.novels.chapterTitles[4])

	patches := f.content.recordedPatches()
	require.Len(t, patches, 1)
	assert.Nil(t, patches[0].Content, "title generation never touches chapter content")
	require.NotNil(t, patches[0].Title)
	assert.Equal(t, "نهاية البداية", *patches[0].Title)
	assert.NotNil(t, patches[0].LastUpdated)
}

func TestTitlePipelineShortChapterLeftQueued(t *testing.T) {
	f := newTitleFixture(t, []int{1, 2}, map[int]string{
		1: "قصير",
		2: longSource,
	})

	require.NoError(t, f.task.Execute(context.Background()))

	final := f.jobs.mustGet(f.job.ID)
	assert.Equal(t, domain.JobStatusCompleted, final.Status)
	assert.Equal(t, 1, final.ProcessedCount)
	assert.Equal(t, []int{1}, final.TargetChapters, "short chapter kept for manual retry")
	assert.NotContains(t, f.novels.chapterTitles, 1)
	assert.Contains(t, f.novels.chapterTitles, 2)
}

func TestTitlePipelineSaveFailureLeavesChapterQueued(t *testing.T) {
	f := newTitleFixture(t, []int{7}, map[int]string{7: longSource})
	f.content.setErr = errors.New("write timeout")

	require.NoError(t, f.task.Execute(context.Background()))

	final := f.jobs.mustGet(f.job.ID)
	assert.Zero(t, final.ProcessedCount)
	assert.Equal(t, []int{7}, final.TargetChapters)
	assert.NotContains(t, f.novels.chapterTitles, 7)
}

func TestTitlePipelineRateLimitRetriesSameChapter(t *testing.T) {
	f := newTitleFixture(t, []int{3}, map[int]string{3: longSource})

	var attempts int
	f.gen.generateFn = func(req generation.Request) (string, error) {
		attempts++
		if attempts < 3 {
			return "", generation.ErrRateLimited
		}
		return "عنوان أخير", nil
	}

	require.NoError(t, f.task.Execute(context.Background()))

	final := f.jobs.mustGet(f.job.ID)
	assert.Equal(t, domain.JobStatusCompleted, final.Status)
	assert.Equal(t, 1, final.ProcessedCount)
	assert.Equal(t, "عنوان أخير", f.novels.chapterTitles[3])

	// Two rate-limit rejections used two different keys before the third
	// attempt succeeded.
	reqs := f.gen.recordedRequests()
	require.Len(t, reqs, 3)
	assert.Equal(t, "key-1", reqs[0].APIKey)
	assert.Equal(t, "key-2", reqs[1].APIKey)
	assert.Equal(t, "key-1", reqs[2].APIKey)
}

func TestTitlePipelineQueueNeverGrows(t *testing.T) {
	f := newTitleFixture(t, []int{1, 2, 3}, map[int]string{
		1: longSource,
		2: longSource,
		3: longSource,
	})

	var lengths []int
	f.jobs.afterUpdateProgress = func(job *domain.Job) {
		lengths = append(lengths, len(job.TargetChapters))
	}

	require.NoError(t, f.task.Execute(context.Background()))

	prev := 3
	for _, l := range lengths {
		assert.LessOrEqual(t, l, prev, "target queue must never grow")
		prev = l
	}
	assert.Equal(t, 3, f.jobs.mustGet(f.job.ID).ProcessedCount)
}
