package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNovel() *domain.Novel {
	return &domain.Novel{
		ID:     uuid.New(),
		Title:  "رحلة الغرب",
		Status: domain.NovelStatusOngoing,
	}
}

func TestJobServiceStart(t *testing.T) {
	novel := testNovel()

	novels := &mockNovelStore{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Novel, error) {
			if id == novel.ID {
				return novel, nil
			}
			return nil, store.ErrNovelNotFound
		},
		listChapterNumbersFn: func(_ context.Context, _ uuid.UUID) ([]int, error) {
			return []int{1, 2, 3, 4, 5}, nil
		},
	}

	t.Run("explicit chapter list", func(t *testing.T) {
		var created *domain.Job
		jobs := &mockJobStore{
			createFn: func(_ context.Context, job *domain.Job) error {
				created = job
				return nil
			},
		}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		submitter := &mockSubmitter{}
		svc := NewJobService(jobs, novels, db, &mockFactory{}, submitter, nil)

		jobID, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:  novel.ID,
			Chapters: []int{3, 1, 3, 2},
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, jobID)
		assert.Equal(t, []int{1, 2, 3}, created.TargetChapters, "chapters deduplicated and sorted")
		assert.Equal(t, 3, created.TotalToProcess)
		assert.Equal(t, domain.JobStatusActive, created.Status)
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, jobID, submitter.submitted[0].ID())
		assert.NoError(t, mock.ExpectationsWereMet(), "job row is created inside a transaction")
	})

	t.Run("all chapters selector", func(t *testing.T) {
		var created *domain.Job
		jobs := &mockJobStore{createFn: func(_ context.Context, job *domain.Job) error {
			created = job
			return nil
		}}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		svc := NewJobService(jobs, novels, db, &mockFactory{}, &mockSubmitter{}, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTitleGeneration, StartJobParams{
			NovelID: novel.ID,
			All:     true,
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, created.TargetChapters)
	})

	t.Run("from chapter selector", func(t *testing.T) {
		var created *domain.Job
		jobs := &mockJobStore{createFn: func(_ context.Context, job *domain.Job) error {
			created = job
			return nil
		}}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		svc := NewJobService(jobs, novels, db, &mockFactory{}, &mockSubmitter{}, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:     novel.ID,
			FromChapter: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5}, created.TargetChapters)
	})

	t.Run("rejects ambiguous selector", func(t *testing.T) {
		db, _ := newTxDB(t)
		svc := NewJobService(&mockJobStore{}, novels, db, &mockFactory{}, &mockSubmitter{}, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:  novel.ID,
			All:      true,
			Chapters: []int{1},
		})
		assert.ErrorIs(t, err, ErrInvalidSelector)
	})

	t.Run("rejects empty selector result", func(t *testing.T) {
		db, _ := newTxDB(t)
		svc := NewJobService(&mockJobStore{}, novels, db, &mockFactory{}, &mockSubmitter{}, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:     novel.ID,
			FromChapter: 99,
		})
		assert.ErrorIs(t, err, ErrNoChaptersSelected)
	})

	t.Run("unknown novel", func(t *testing.T) {
		db, _ := newTxDB(t)
		svc := NewJobService(&mockJobStore{}, novels, db, &mockFactory{}, &mockSubmitter{}, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:  uuid.New(),
			Chapters: []int{1},
		})
		assert.ErrorIs(t, err, store.ErrNovelNotFound)
	})

	t.Run("create failure rolls the transaction back", func(t *testing.T) {
		jobs := &mockJobStore{createFn: func(_ context.Context, _ *domain.Job) error {
			return errors.New("connection reset")
		}}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		submitter := &mockSubmitter{}
		svc := NewJobService(jobs, novels, db, &mockFactory{}, submitter, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:  novel.ID,
			Chapters: []int{1},
		})
		require.Error(t, err)
		assert.Empty(t, submitter.submitted, "nothing is queued for a job that was never persisted")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("queue full marks job failed", func(t *testing.T) {
		var statusWrites []domain.JobStatus
		jobs := &mockJobStore{
			updateStatusFn: func(_ context.Context, _ uuid.UUID, status domain.JobStatus) error {
				statusWrites = append(statusWrites, status)
				return nil
			},
		}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		full := &mockSubmitter{submitFn: func(_ task.Task) error {
			return errors.New("job queue is full, try again later")
		}}
		svc := NewJobService(jobs, novels, db, &mockFactory{}, full, nil)

		_, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			NovelID:  novel.ID,
			Chapters: []int{1},
		})
		assert.ErrorIs(t, err, ErrJobQueueFull)
		assert.Contains(t, statusWrites, domain.JobStatusFailed)
	})

	t.Run("resume job id delegates to resume", func(t *testing.T) {
		existing, err := domain.NewJob(domain.JobKindTranslation, novel, []int{6}, nil)
		require.NoError(t, err)
		existing.Status = domain.JobStatusPaused

		var statusWrites []domain.JobStatus
		jobs := &mockJobStore{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Job, error) {
				if id == existing.ID {
					c := *existing
					return &c, nil
				}
				return nil, store.ErrJobNotFound
			},
			updateStatusFn: func(_ context.Context, _ uuid.UUID, status domain.JobStatus) error {
				statusWrites = append(statusWrites, status)
				return nil
			},
		}
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		submitter := &mockSubmitter{}
		svc := NewJobService(jobs, novels, db, &mockFactory{}, submitter, nil)

		jobID, err := svc.Start(context.Background(), domain.JobKindTranslation, StartJobParams{
			ResumeJobID: &existing.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, jobID)
		assert.Equal(t, []domain.JobStatus{domain.JobStatusActive}, statusWrites)
		require.Len(t, submitter.submitted, 1)
	})
}

func TestJobServicePauseResume(t *testing.T) {
	novel := testNovel()

	makeJob := func(status domain.JobStatus) *domain.Job {
		job, err := domain.NewJob(domain.JobKindTranslation, novel, []int{1, 2}, nil)
		require.NoError(t, err)
		job.Status = status
		return job
	}

	storeFor := func(job *domain.Job, statusWrites *[]domain.JobStatus) *mockJobStore {
		return &mockJobStore{
			getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Job, error) {
				if id == job.ID {
					c := *job
					return &c, nil
				}
				return nil, store.ErrJobNotFound
			},
			updateStatusFn: func(_ context.Context, _ uuid.UUID, status domain.JobStatus) error {
				if statusWrites != nil {
					*statusWrites = append(*statusWrites, status)
				}
				return nil
			},
		}
	}

	t.Run("pause active job", func(t *testing.T) {
		job := makeJob(domain.JobStatusActive)
		var writes []domain.JobStatus
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		svc := NewJobService(storeFor(job, &writes), &mockNovelStore{}, db, &mockFactory{}, &mockSubmitter{}, nil)

		require.NoError(t, svc.Pause(context.Background(), domain.JobKindTranslation, job.ID))
		assert.Equal(t, []domain.JobStatus{domain.JobStatusPaused}, writes)
		assert.NoError(t, mock.ExpectationsWereMet(), "status check and write share one transaction")
	})

	t.Run("pause rejects non-active job", func(t *testing.T) {
		job := makeJob(domain.JobStatusCompleted)
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		svc := NewJobService(storeFor(job, nil), &mockNovelStore{}, db, &mockFactory{}, &mockSubmitter{}, nil)

		err := svc.Pause(context.Background(), domain.JobKindTranslation, job.ID)
		assert.ErrorIs(t, err, ErrJobNotPausable)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("resume paused job resubmits pipeline", func(t *testing.T) {
		job := makeJob(domain.JobStatusPaused)
		var writes []domain.JobStatus
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectCommit()
		submitter := &mockSubmitter{}
		svc := NewJobService(storeFor(job, &writes), &mockNovelStore{}, db, &mockFactory{}, submitter, nil)

		require.NoError(t, svc.Resume(context.Background(), domain.JobKindTranslation, job.ID))
		assert.Equal(t, []domain.JobStatus{domain.JobStatusActive}, writes)
		require.Len(t, submitter.submitted, 1)
		assert.Equal(t, job.ID, submitter.submitted[0].ID())
	})

	t.Run("resume rejects failed job", func(t *testing.T) {
		job := makeJob(domain.JobStatusFailed)
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		svc := NewJobService(storeFor(job, nil), &mockNovelStore{}, db, &mockFactory{}, &mockSubmitter{}, nil)

		err := svc.Resume(context.Background(), domain.JobKindTranslation, job.ID)
		assert.ErrorIs(t, err, ErrJobNotResumable)
	})

	t.Run("kind mismatch hides the job", func(t *testing.T) {
		job := makeJob(domain.JobStatusActive)
		db, mock := newTxDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()
		svc := NewJobService(storeFor(job, nil), &mockNovelStore{}, db, &mockFactory{}, &mockSubmitter{}, nil)

		err := svc.Pause(context.Background(), domain.JobKindTitleGeneration, job.ID)
		assert.ErrorIs(t, err, store.ErrJobNotFound)
	})
}

func TestJobServiceDelete(t *testing.T) {
	novel := testNovel()
	job, err := domain.NewJob(domain.JobKindTranslation, novel, []int{1}, nil)
	require.NoError(t, err)

	var deleted []uuid.UUID
	jobs := &mockJobStore{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*domain.Job, error) {
			if id == job.ID {
				c := *job
				return &c, nil
			}
			return nil, store.ErrJobNotFound
		},
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			deleted = append(deleted, id)
			return nil
		},
	}
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()
	svc := NewJobService(jobs, &mockNovelStore{}, db, &mockFactory{}, &mockSubmitter{}, nil)

	require.NoError(t, svc.Delete(context.Background(), domain.JobKindTranslation, job.ID))
	assert.Equal(t, []uuid.UUID{job.ID}, deleted)

	err = svc.Delete(context.Background(), domain.JobKindTranslation, uuid.New())
	assert.ErrorIs(t, err, store.ErrJobNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
