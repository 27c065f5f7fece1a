package api

import (
	"context"
	"database/sql"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service/auth"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// mockJobDirector implements JobDirector with injectable behavior.
type mockJobDirector struct {
	startFn  func(ctx context.Context, kind domain.JobKind, params service.StartJobParams) (uuid.UUID, error)
	pauseFn  func(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	resumeFn func(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	deleteFn func(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	listFn   func(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error)
	getFn    func(ctx context.Context, kind domain.JobKind, id uuid.UUID) (*domain.Job, error)
}

func (m *mockJobDirector) Start(ctx context.Context, kind domain.JobKind, params service.StartJobParams) (uuid.UUID, error) {
	if m.startFn != nil {
		return m.startFn(ctx, kind, params)
	}
	return uuid.New(), nil
}

func (m *mockJobDirector) Pause(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	if m.pauseFn != nil {
		return m.pauseFn(ctx, kind, id)
	}
	return nil
}

func (m *mockJobDirector) Resume(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	if m.resumeFn != nil {
		return m.resumeFn(ctx, kind, id)
	}
	return nil
}

func (m *mockJobDirector) Delete(ctx context.Context, kind domain.JobKind, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, kind, id)
	}
	return nil
}

func (m *mockJobDirector) List(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error) {
	if m.listFn != nil {
		return m.listFn(ctx, kind)
	}
	return nil, nil
}

func (m *mockJobDirector) Get(ctx context.Context, kind domain.JobKind, id uuid.UUID) (*domain.Job, error) {
	if m.getFn != nil {
		return m.getFn(ctx, kind, id)
	}
	return nil, store.ErrJobNotFound
}

// mockSettingsManager implements SettingsManager with injectable behavior.
type mockSettingsManager struct {
	getFn    func(ctx context.Context, kind domain.JobKind) (*domain.JobSettings, error)
	updateFn func(ctx context.Context, kind domain.JobKind, params service.UpdateSettingsParams) (*domain.JobSettings, error)
}

func (m *mockSettingsManager) Get(ctx context.Context, kind domain.JobKind) (*domain.JobSettings, error) {
	if m.getFn != nil {
		return m.getFn(ctx, kind)
	}
	return domain.DefaultJobSettings(kind, nil)
}

func (m *mockSettingsManager) Update(ctx context.Context, kind domain.JobKind, params service.UpdateSettingsParams) (*domain.JobSettings, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, kind, params)
	}
	return domain.DefaultJobSettings(kind, nil)
}

// mockGlossaryManager implements GlossaryManager with injectable behavior.
type mockGlossaryManager struct {
	listFn       func(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error)
	upsertFn     func(ctx context.Context, params service.UpsertTermParams) (*domain.GlossaryTerm, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	bulkDeleteFn func(ctx context.Context, ids []uuid.UUID) (int64, error)
}

func (m *mockGlossaryManager) List(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error) {
	if m.listFn != nil {
		return m.listFn(ctx, novelID)
	}
	return nil, nil
}

func (m *mockGlossaryManager) Upsert(ctx context.Context, params service.UpsertTermParams) (*domain.GlossaryTerm, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, params)
	}
	return domain.NewGlossaryTerm(params.NovelID, params.Term, params.Translation,
		domain.TermCategory(params.Category), params.Description, false)
}

func (m *mockGlossaryManager) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockGlossaryManager) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if m.bulkDeleteFn != nil {
		return m.bulkDeleteFn(ctx, ids)
	}
	return int64(len(ids)), nil
}

// mockNovelStore implements store.NovelStore with injectable behavior.
type mockNovelStore struct {
	getByIDFn            func(ctx context.Context, id uuid.UUID) (*domain.Novel, error)
	listFn               func(ctx context.Context, limit, offset int) ([]*domain.Novel, error)
	listChapterNumbersFn func(ctx context.Context, novelID uuid.UUID) ([]int, error)
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

func (m *mockNovelStore) UpdateStatus(_ context.Context, _ uuid.UUID, _ domain.NovelStatus) error {
	return nil
}

func (m *mockNovelStore) ListChapterNumbers(ctx context.Context, novelID uuid.UUID) ([]int, error) {
	if m.listChapterNumbersFn != nil {
		return m.listChapterNumbersFn(ctx, novelID)
	}
	return nil, nil
}

func (m *mockNovelStore) UpsertChapterTitle(_ context.Context, _ uuid.UUID, _ int, _ string) error {
	return nil
}

func (m *mockNovelStore) WithTx(_ *sql.Tx) store.NovelStore { return m }

// stubJWTService implements auth.JWTService with injectable behavior.
type stubJWTService struct {
	generateFn func(ctx context.Context, subject string) (string, error)
	validateFn func(ctx context.Context, token string) (*auth.Claims, error)
}

func (s *stubJWTService) GenerateToken(ctx context.Context, subject string) (string, error) {
	if s.generateFn != nil {
		return s.generateFn(ctx, subject)
	}
	return "token-" + subject, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.validateFn != nil {
		return s.validateFn(ctx, token)
	}
	return nil, auth.ErrInvalidToken
}

// stubVerifier implements auth.Verifier with injectable behavior.
type stubVerifier struct {
	verifyFn func(email, password string) error
}

func (s *stubVerifier) Verify(email, password string) error {
	if s.verifyFn != nil {
		return s.verifyFn(email, password)
	}
	return auth.ErrInvalidCredentials
}
