package api

import (
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/google/uuid"
)

// Common request/response structures

// LoginRequest defines the payload for the operator login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for the login endpoint.
type AuthResponse struct {
	Token string `json:"token"`
}

// StartJobRequest defines the payload for starting a pipeline job.
// Exactly one of all/chapters/from_chapter must be set unless
// resume_job_id is given, in which case the selectors are ignored.
type StartJobRequest struct {
	NovelID     uuid.UUID  `json:"novel_id"`
	All         bool       `json:"all,omitempty"`
	Chapters    []int      `json:"chapters,omitempty"`
	FromChapter int        `json:"from_chapter,omitempty"`
	APIKeys     []string   `json:"api_keys,omitempty"`
	ResumeJobID *uuid.UUID `json:"resume_job_id,omitempty"`
}

// StartJobResponse acknowledges a queued job.
type StartJobResponse struct {
	JobID uuid.UUID `json:"job_id"`
}

// JobSummaryResponse is the lightweight list projection of a job: enough
// to render a dashboard row without the logs or the target queue.
type JobSummaryResponse struct {
	ID             uuid.UUID `json:"id"`
	NovelID        uuid.UUID `json:"novel_id"`
	NovelTitle     string    `json:"novel_title"`
	NovelCover     string    `json:"novel_cover,omitempty"`
	Status         string    `json:"status"`
	ProcessedCount int       `json:"processed_count"`
	TotalToProcess int       `json:"total_to_process"`
	CurrentChapter int       `json:"current_chapter"`
	StartedAt      time.Time `json:"started_at"`
}

// JobDetailResponse is the full job record including the remaining
// target queue and the append-only log.
type JobDetailResponse struct {
	JobSummaryResponse
	TargetChapters []int                `json:"target_chapters"`
	Logs           []domain.JobLogEntry `json:"logs"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

func newJobSummary(job *domain.Job) JobSummaryResponse {
	return JobSummaryResponse{
		ID:             job.ID,
		NovelID:        job.NovelID,
		NovelTitle:     job.NovelTitle,
		NovelCover:     job.NovelCover,
		Status:         string(job.Status),
		ProcessedCount: job.ProcessedCount,
		TotalToProcess: job.TotalToProcess,
		CurrentChapter: job.CurrentChapter,
		StartedAt:      job.StartedAt,
	}
}

func newJobDetail(job *domain.Job) JobDetailResponse {
	logs := job.Logs
	if logs == nil {
		logs = []domain.JobLogEntry{}
	}
	targets := job.TargetChapters
	if targets == nil {
		targets = []int{}
	}
	return JobDetailResponse{
		JobSummaryResponse: newJobSummary(job),
		TargetChapters:     targets,
		Logs:               logs,
		UpdatedAt:          job.UpdatedAt,
	}
}

// UpsertTermRequest defines the payload for the glossary upsert endpoint.
type UpsertTermRequest struct {
	Term        string `json:"term"        validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// BulkDeleteRequest defines the payload for the glossary bulk delete
// endpoint.
type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

// BulkDeleteResponse reports how many of the requested terms existed.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// UpdateSettingsRequest defines the payload for the per-kind settings
// endpoint. Omitted fields keep their stored value.
type UpdateSettingsRequest struct {
	ModelName      string   `json:"model_name,omitempty"`
	PromptTemplate string   `json:"prompt_template,omitempty"`
	APIKeys        []string `json:"api_keys,omitempty"`
}

// NovelResponse is the read projection of a novel.
type NovelResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NovelDetailResponse adds the recorded chapter numbers to the novel
// projection.
type NovelDetailResponse struct {
	NovelResponse
	ChapterNumbers []int `json:"chapter_numbers"`
}

func newNovelResponse(novel *domain.Novel) NovelResponse {
	return NovelResponse{
		ID:        novel.ID,
		Title:     novel.Title,
		CoverURL:  novel.CoverURL,
		Status:    string(novel.Status),
		UpdatedAt: novel.UpdatedAt,
	}
}
