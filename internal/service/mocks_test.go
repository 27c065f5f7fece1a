package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/task"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newTxDB creates a mock database connection for the service transaction
// paths, together with its expectation handle. The mock stores return
// themselves from WithTx, so only Begin/Commit/Rollback need expectations.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// mockJobStore implements store.JobStore with injectable behavior.
type mockJobStore struct {
	createFn         func(ctx context.Context, job *domain.Job) error
	getByIDFn        func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	updateProgressFn func(ctx context.Context, job *domain.Job) error
	updateStatusFn   func(ctx context.Context, id uuid.UUID, status domain.JobStatus) error
	deleteFn         func(ctx context.Context, id uuid.UUID) error
	listByKindFn     func(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error)
	findByStatusFn   func(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error)
}

func (m *mockJobStore) Create(ctx context.Context, job *domain.Job) error {
	if m.createFn != nil {
		return m.createFn(ctx, job)
	}
	return nil
}

func (m *mockJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrJobNotFound
}

func (m *mockJobStore) UpdateProgress(ctx context.Context, job *domain.Job) error {
	if m.updateProgressFn != nil {
		return m.updateProgressFn(ctx, job)
	}
	return nil
}

func (m *mockJobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.JobStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockJobStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockJobStore) ListByKind(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error) {
	if m.listByKindFn != nil {
		return m.listByKindFn(ctx, kind)
	}
	return nil, nil
}

func (m *mockJobStore) FindByStatus(ctx context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	if m.findByStatusFn != nil {
		return m.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (m *mockJobStore) WithTx(_ *sql.Tx) store.JobStore { return m }

// mockNovelStore implements store.NovelStore with injectable behavior.
type mockNovelStore struct {
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Novel, error)
	listFn               func(ctx context.Context, limit, offset int) ([]*domain.Novel, error)
	updateStatusFn       func(ctx context.Context, id uuid.UUID, status domain.NovelStatus) error
	listChapterNumbersFn func(ctx context.Context, novelID uuid.UUID) ([]int, error)
	upsertChapterTitleFn func(ctx context.Context, novelID uuid.UUID, number int, title string) error
}

func (m *mockNovelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Novel, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, store.ErrNovelNotFound
}

func (m *mockNovelStore) List(ctx context.Context, limit, offset int) ([]*domain.Novel, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockNovelStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.NovelStatus) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockNovelStore) ListChapterNumbers(ctx context.Context, novelID uuid.UUID) ([]int, error) {
	if m.listChapterNumbersFn != nil {
		return m.listChapterNumbersFn(ctx, novelID)
	}
	return nil, nil
}

func (m *mockNovelStore) UpsertChapterTitle(ctx context.Context, novelID uuid.UUID, number int, title string) error {
	if m.upsertChapterTitleFn != nil {
		return m.upsertChapterTitleFn(ctx, novelID, number, title)
	}
	return nil
}

func (m *mockNovelStore) WithTx(_ *sql.Tx) store.NovelStore { return m }

// mockGlossaryStore implements store.GlossaryStore with injectable behavior.
type mockGlossaryStore struct {
	upsertFn      func(ctx context.Context, term *domain.GlossaryTerm) error
	listByNovelFn func(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
	deleteBulkFn  func(ctx context.Context, ids []uuid.UUID) (int64, error)
}

func (m *mockGlossaryStore) Upsert(ctx context.Context, term *domain.GlossaryTerm) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, term)
	}
	return nil
}

func (m *mockGlossaryStore) ListByNovel(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error) {
	if m.listByNovelFn != nil {
		return m.listByNovelFn(ctx, novelID)
	}
	return nil, nil
}

func (m *mockGlossaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockGlossaryStore) DeleteBulk(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if m.deleteBulkFn != nil {
		return m.deleteBulkFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

func (m *mockGlossaryStore) WithTx(_ *sql.Tx) store.GlossaryStore { return m }

// mockSettingsStore implements store.SettingsStore with injectable behavior.
type mockSettingsStore struct {
	getByKindFn func(ctx context.Context, kind domain.JobKind, seedKeys []string) (*domain.JobSettings, error)
	updateFn    func(ctx context.Context, settings *domain.JobSettings) error
}

func (m *mockSettingsStore) GetByKind(ctx context.Context, kind domain.JobKind, seedKeys []string) (*domain.JobSettings, error) {
	if m.getByKindFn != nil {
		return m.getByKindFn(ctx, kind, seedKeys)
	}
	return domain.DefaultJobSettings(kind, seedKeys)
}

func (m *mockSettingsStore) Update(ctx context.Context, settings *domain.JobSettings) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, settings)
	}
	return nil
}

func (m *mockSettingsStore) WithTx(_ *sql.Tx) store.SettingsStore { return m }

// mockTask is a no-op task carrying a job's identity.
type mockTask struct {
	id   uuid.UUID
	kind domain.JobKind
}

func (t *mockTask) ID() uuid.UUID                   { return t.id }
func (t *mockTask) Kind() domain.JobKind            { return t.kind }
func (t *mockTask) Execute(_ context.Context) error { return nil }

// mockFactory implements task.TaskFactory.
type mockFactory struct {
	newTaskFn func(job *domain.Job) (task.Task, error)
}

func (f *mockFactory) NewTask(job *domain.Job) (task.Task, error) {
	if f.newTaskFn != nil {
		return f.newTaskFn(job)
	}
	return &mockTask{id: job.ID, kind: job.Kind}, nil
}

// mockSubmitter implements TaskSubmitter recording submissions.
type mockSubmitter struct {
	submitFn  func(t task.Task) error
	submitted []task.Task
}

func (s *mockSubmitter) Submit(t task.Task) error {
	s.submitted = append(s.submitted, t)
	if s.submitFn != nil {
		return s.submitFn(t)
	}
	return nil
}
