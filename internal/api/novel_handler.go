package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/api/shared"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
)

// Pagination defaults for the novel list endpoint.
const (
	defaultNovelPageSize = 50
	maxNovelPageSize     = 200
)

// NovelHandler serves the read-only novel endpoints.
type NovelHandler struct {
	novels store.NovelStore
	logger *slog.Logger
}

// NewNovelHandler creates a new NovelHandler.
func NewNovelHandler(novels store.NovelStore, lg *slog.Logger) *NovelHandler {
	if lg == nil {
		lg = slog.Default()
	}
	return &NovelHandler{
		novels: novels,
		logger: lg.With(slog.String("component", "novel_handler")),
	}
}

// List handles GET /api/novels. Supports limit/offset query parameters;
// novels are ordered by last update descending.
func (h *NovelHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultNovelPageSize)
	if limit <= 0 || limit > maxNovelPageSize {
		limit = defaultNovelPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	novels, err := h.novels.List(r.Context(), limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	out := make([]NovelResponse, 0, len(novels))
	for _, novel := range novels {
		out = append(out, newNovelResponse(novel))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Get handles GET /api/novels/{id}, returning the novel with its recorded
// chapter numbers.
func (h *NovelHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := novelPathID(w, r)
	if !ok {
		return
	}

	novel, err := h.novels.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	chapters, err := h.novels.ListChapterNumbers(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	if chapters == nil {
		chapters = []int{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NovelDetailResponse{
		NovelResponse:  newNovelResponse(novel),
		ChapterNumbers: chapters,
	})
}

// queryInt parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
