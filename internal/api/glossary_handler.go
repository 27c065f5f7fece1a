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

// GlossaryManager is the slice of the glossary service the handler needs.
// Satisfied by *service.GlossaryService.
type GlossaryManager interface {
	List(ctx context.Context, novelID uuid.UUID) ([]*domain.GlossaryTerm, error)
	Upsert(ctx context.Context, params service.UpsertTermParams) (*domain.GlossaryTerm, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// GlossaryHandler serves the per-novel glossary endpoints.
type GlossaryHandler struct {
	glossary GlossaryManager
	logger   *slog.Logger
}

// NewGlossaryHandler creates a new GlossaryHandler.
func NewGlossaryHandler(glossary GlossaryManager, lg *slog.Logger) *GlossaryHandler {
	if lg == nil {
		lg = slog.Default()
	}
	return &GlossaryHandler{
		glossary: glossary,
		logger:   lg.With(slog.String("component", "glossary_handler")),
	}
}

// RegisterRoutes mounts the glossary routes under a novel route carrying
// an {id} parameter.
func (h *GlossaryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/glossary", h.List)
	r.Put("/glossary", h.Upsert)
	r.Delete("/glossary/{termID}", h.Delete)
	r.Post("/glossary/bulk-delete", h.BulkDelete)
}

// List handles GET /api/novels/{id}/glossary.
func (h *GlossaryHandler) List(w http.ResponseWriter, r *http.Request) {
	novelID, ok := novelPathID(w, r)
	if !ok {
		return
	}

	terms, err := h.glossary.List(r.Context(), novelID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if terms == nil {
		terms = []*domain.GlossaryTerm{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, terms)
}

// Upsert handles PUT /api/novels/{id}/glossary. Re-submitting the same
// term overwrites it; the (novel, term) key makes the call idempotent.
func (h *GlossaryHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	novelID, ok := novelPathID(w, r)
	if !ok {
		return
	}

	var req UpsertTermRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	term, err := h.glossary.Upsert(r.Context(), service.UpsertTermParams{
		NovelID:     novelID,
		Term:        req.Term,
		Translation: req.Translation,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, term)
}

// Delete handles DELETE /api/novels/{id}/glossary/{termID}.
func (h *GlossaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	termID, err := uuid.Parse(chi.URLParam(r, "termID"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid term ID")
		return
	}

	if err := h.glossary.Delete(r.Context(), termID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/novels/{id}/glossary/bulk-delete. IDs that
// do not exist are not an error; the response reports how many did.
func (h *GlossaryHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	deleted, err := h.glossary.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

// novelPathID extracts and validates the {id} novel path parameter.
func novelPathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid novel ID")
		return uuid.Nil, false
	}
	return id, true
}
