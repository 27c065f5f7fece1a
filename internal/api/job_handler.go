package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/api/shared"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service"
)

// JobDirector is the slice of the job service the handler needs.
// Satisfied by *service.JobService.
type JobDirector interface {
	Start(ctx context.Context, kind domain.JobKind, params service.StartJobParams) (uuid.UUID, error)
	Pause(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	Resume(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	Delete(ctx context.Context, kind domain.JobKind, id uuid.UUID) error
	List(ctx context.Context, kind domain.JobKind) ([]*domain.Job, error)
	Get(ctx context.Context, kind domain.JobKind, id uuid.UUID) (*domain.Job, error)
}

// SettingsManager is the slice of the settings service the handler needs.
// Satisfied by *service.SettingsService.
type SettingsManager interface {
	Get(ctx context.Context, kind domain.JobKind) (*domain.JobSettings, error)
	Update(ctx context.Context, kind domain.JobKind, params service.UpdateSettingsParams) (*domain.JobSettings, error)
}

// JobHandler serves one kind's job surface. The translation and title
// generation surfaces are symmetric, so the same handler is mounted twice
// with a different kind.
type JobHandler struct {
	kind     domain.JobKind
	jobs     JobDirector
	settings SettingsManager
	logger   *slog.Logger
}

// NewJobHandler creates a JobHandler for the given kind.
func NewJobHandler(kind domain.JobKind, jobs JobDirector, settings SettingsManager, lg *slog.Logger) *JobHandler {
	if lg == nil {
		lg = slog.Default()
	}
	return &JobHandler{
		kind:     kind,
		jobs:     jobs,
		settings: settings,
		logger:   lg.With(slog.String("component", "job_handler"), slog.String("kind", string(kind))),
	}
}

// RegisterRoutes mounts the per-kind job routes on the given router.
func (h *JobHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Start)
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/pause", h.Pause)
	r.Post("/{id}/resume", h.Resume)
	r.Delete("/{id}", h.Delete)
}

// List handles GET /. Jobs are returned as lightweight summaries without
// logs or the target queue.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobs.List(r.Context(), h.kind)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	out := make([]JobSummaryResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, newJobSummary(job))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Start handles POST /. The job is queued and the call returns 202; its
// progress is observable through GET /{id}.
func (h *JobHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartJobRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	jobID, err := h.jobs.Start(r.Context(), h.kind, service.StartJobParams{
		NovelID:     req.NovelID,
		All:         req.All,
		Chapters:    req.Chapters,
		FromChapter: req.FromChapter,
		APIKeys:     req.APIKeys,
		ResumeJobID: req.ResumeJobID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, StartJobResponse{JobID: jobID})
}

// Get handles GET /{id}, returning the full job record.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.Get(r.Context(), h.kind, id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, newJobDetail(job))
}

// Pause handles POST /{id}/pause. The worker acknowledges at its next
// chapter boundary; the 202 only means the request was recorded.
func (h *JobHandler) Pause(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.jobs.Pause(r.Context(), h.kind, id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"status": string(domain.JobStatusPaused)})
}

// Resume handles POST /{id}/resume.
func (h *JobHandler) Resume(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.jobs.Resume(r.Context(), h.kind, id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"status": string(domain.JobStatusActive)})
}

// Delete handles DELETE /{id}. An in-flight worker stops silently at its
// next checkpoint.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.jobs.Delete(r.Context(), h.kind, id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /settings for this kind.
func (h *JobHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context(), h.kind)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// UpdateSettings handles PUT /settings for this kind. Omitted fields keep
// their stored value.
func (h *JobHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	settings, err := h.settings.Update(r.Context(), h.kind, service.UpdateSettingsParams{
		ModelName:      req.ModelName,
		PromptTemplate: req.PromptTemplate,
		APIKeys:        req.APIKeys,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, settings)
}

// pathID extracts and validates the {id} path parameter, writing a 400
// response when it is malformed.
func (h *JobHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return uuid.Nil, false
	}
	return id, true
}
