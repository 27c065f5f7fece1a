package task

import (
	"context"
	"database/sql"
	"slices"
	"sync"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/generation"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/contentstore"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/google/uuid"
)

// copyJob deep-copies a job so fakes behave like a real store: every read
// returns an independent snapshot.
func copyJob(j *domain.Job) *domain.Job {
	c := *j
	c.TargetChapters = slices.Clone(j.TargetChapters)
	c.Logs = slices.Clone(j.Logs)
	c.APIKeys = slices.Clone(j.APIKeys)
	return &c
}

// fakeJobStore is an in-memory JobStore with the same field-ownership
// split as the real one: UpdateProgress never touches status.
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*domain.Job

	// afterUpdateProgress runs under the lock after each progress write,
	// letting tests inject an external pause at a precise moment.
	afterUpdateProgress func(job *domain.Job)
}

func newFakeJobStore(jobs ...*domain.Job) *fakeJobStore {
	s := &fakeJobStore{jobs: make(map[uuid.UUID]*domain.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = copyJob(j)
	}
	return s
}

func (s *fakeJobStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = copyJob(job)
	return nil
}

func (s *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	return copyJob(j), nil
}

func (s *fakeJobStore) UpdateProgress(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[job.ID]
	if !ok {
		return store.ErrJobNotFound
	}
	stored.TargetChapters = slices.Clone(job.TargetChapters)
	stored.ProcessedCount = job.ProcessedCount
	stored.CurrentChapter = job.CurrentChapter
	stored.Logs = slices.Clone(job.Logs)
	stored.UpdatedAt = job.UpdatedAt
	if s.afterUpdateProgress != nil {
		s.afterUpdateProgress(stored)
	}
	return nil
}

func (s *fakeJobStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.JobStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[id]
	if !ok {
		return store.ErrJobNotFound
	}
	stored.Status = status
	return nil
}

func (s *fakeJobStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return store.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

func (s *fakeJobStore) ListByKind(_ context.Context, kind domain.JobKind) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, j := range s.jobs {
		if j.Kind == kind {
			out = append(out, copyJob(j))
		}
	}
	return out, nil
}

func (s *fakeJobStore) FindByStatus(_ context.Context, status domain.JobStatus) ([]*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Job
	for _, j := range s.jobs {
		if j.Status == status {
			out = append(out, copyJob(j))
		}
	}
	return out, nil
}

func (s *fakeJobStore) WithTx(_ *sql.Tx) store.JobStore { return s }

// mustGet is a test helper returning the stored snapshot of a job.
func (s *fakeJobStore) mustGet(id uuid.UUID) *domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyJob(s.jobs[id])
}

// fakeNovelStore is an in-memory NovelStore recording title upserts and
// status changes.
type fakeNovelStore struct {
	mu            sync.Mutex
	novels        map[uuid.UUID]*domain.Novel
	chapterTitles map[int]string
	statusWrites  []domain.NovelStatus
	upsertErr     error
}

func newFakeNovelStore(novels ...*domain.Novel) *fakeNovelStore {
	s := &fakeNovelStore{
		novels:        make(map[uuid.UUID]*domain.Novel),
		chapterTitles: make(map[int]string),
	}
	for _, n := range novels {
		c := *n
		s.novels[n.ID] = &c
	}
	return s
}

func (s *fakeNovelStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Novel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.novels[id]
	if !ok {
		return nil, store.ErrNovelNotFound
	}
	c := *n
	return &c, nil
}

func (s *fakeNovelStore) List(_ context.Context, _, _ int) ([]*domain.Novel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Novel
	for _, n := range s.novels {
		c := *n
		out = append(out, &c)
	}
	return out, nil
}

func (s *fakeNovelStore) UpdateStatus(_ context.Context, id uuid.UUID, status domain.NovelStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.novels[id]
	if !ok {
		return store.ErrNovelNotFound
	}
	n.Status = status
	s.statusWrites = append(s.statusWrites, status)
	return nil
}

func (s *fakeNovelStore) ListChapterNumbers(_ context.Context, _ uuid.UUID) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []int
	for n := range s.chapterTitles {
		out = append(out, n)
	}
	slices.Sort(out)
	return out, nil
}

func (s *fakeNovelStore) UpsertChapterTitle(_ context.Context, _ uuid.UUID, number int, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.chapterTitles[number] = title
	return nil
}

func (s *fakeNovelStore) WithTx(_ *sql.Tx) store.NovelStore { return s }

// fakeGlossaryStore records upserts keyed by term.
type fakeGlossaryStore struct {
	mu    sync.Mutex
	terms map[string]*domain.GlossaryTerm
}

func newFakeGlossaryStore() *fakeGlossaryStore {
	return &fakeGlossaryStore{terms: make(map[string]*domain.GlossaryTerm)}
}

func (s *fakeGlossaryStore) Upsert(_ context.Context, term *domain.GlossaryTerm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *term
	s.terms[term.Term] = &c
	return nil
}

func (s *fakeGlossaryStore) ListByNovel(_ context.Context, _ uuid.UUID) ([]*domain.GlossaryTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.GlossaryTerm
	for _, t := range s.terms {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (s *fakeGlossaryStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (s *fakeGlossaryStore) DeleteBulk(_ context.Context, ids []uuid.UUID) (int64, error) {
	return int64(len(ids)), nil
}

func (s *fakeGlossaryStore) WithTx(_ *sql.Tx) store.GlossaryStore { return s }

func (s *fakeGlossaryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.terms)
}

// fakeSettingsStore serves one fixed settings row per kind.
type fakeSettingsStore struct {
	apiKeys []string
	err     error
}

func (s *fakeSettingsStore) GetByKind(_ context.Context, kind domain.JobKind, seedKeys []string) (*domain.JobSettings, error) {
	if s.err != nil {
		return nil, s.err
	}
	keys := s.apiKeys
	if keys == nil {
		keys = seedKeys
	}
	return domain.DefaultJobSettings(kind, keys)
}

func (s *fakeSettingsStore) Update(_ context.Context, _ *domain.JobSettings) error { return nil }

func (s *fakeSettingsStore) WithTx(_ *sql.Tx) store.SettingsStore { return s }

// fakeContentStore is an in-memory document store keyed by chapter number.
type fakeContentStore struct {
	mu      sync.Mutex
	docs    map[int]*contentstore.ChapterDocument
	patches []contentstore.ChapterPatch
	pingErr error
	setErr  error
}

func newFakeContentStore(docs map[int]string) *fakeContentStore {
	s := &fakeContentStore{docs: make(map[int]*contentstore.ChapterDocument)}
	for n, content := range docs {
		s.docs[n] = &contentstore.ChapterDocument{Content: content}
	}
	return s
}

func (s *fakeContentStore) Ping(_ context.Context) error { return s.pingErr }

func (s *fakeContentStore) GetChapter(_ context.Context, _ uuid.UUID, number int) (*contentstore.ChapterDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[number]
	if !ok {
		return nil, contentstore.ErrChapterMissing
	}
	c := *doc
	return &c, nil
}

func (s *fakeContentStore) SetChapter(_ context.Context, _ uuid.UUID, number int, patch contentstore.ChapterPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	doc, ok := s.docs[number]
	if !ok {
		doc = &contentstore.ChapterDocument{}
		s.docs[number] = doc
	}
	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.Title != nil {
		doc.Title = *patch.Title
	}
	if patch.LastUpdated != nil {
		doc.LastUpdated = patch.LastUpdated
	}
	s.patches = append(s.patches, patch)
	return nil
}

func (s *fakeContentStore) recordedPatches() []contentstore.ChapterPatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.patches)
}

// fakeGenerator delegates to a func field and records every request.
type fakeGenerator struct {
	mu         sync.Mutex
	generateFn func(req generation.Request) (string, error)
	requests   []generation.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req generation.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return g.generateFn(req)
}

func (g *fakeGenerator) recordedRequests() []generation.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.requests)
}
