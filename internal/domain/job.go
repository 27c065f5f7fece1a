package domain

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies which chapter pipeline a job drives.
type JobKind string

// Possible job kinds
const (
	JobKindTranslation     JobKind = "translation"
	JobKindTitleGeneration JobKind = "title_generation"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

// Possible job status values
const (
	JobStatusActive    JobStatus = "active"
	JobStatusPaused    JobStatus = "paused"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Log levels for job log entries
const (
	JobLogInfo  = "info"
	JobLogWarn  = "warn"
	JobLogError = "error"
)

// Common validation errors for Job
var (
	ErrEmptyJobID        = errors.New("job ID cannot be empty")
	ErrEmptyJobNovelID   = errors.New("job novel ID cannot be empty")
	ErrInvalidJobKind    = errors.New("invalid job kind")
	ErrInvalidJobStatus  = errors.New("invalid job status")
	ErrNoTargetChapters  = errors.New("job has no target chapters")
	ErrInvalidChapter    = errors.New("chapter numbers must be positive")
	ErrChapterNotInQueue = errors.New("chapter is not in the target queue")
	ErrDuplicateChapter  = errors.New("chapter already in the target queue")
)

// JobLogEntry is one append-only progress message on a job. Entries are
// informational only; no logic ever reads them back.
type JobLogEntry struct {
	Message string    `json:"message"`
	Level   string    `json:"level"`
	At      time.Time `json:"at"`
}

// Job is the persistent record of one long-running translation or
// title-generation run. TargetChapters is the authoritative work-remaining
// queue: the worker pops chapters as they complete, which is what makes
// resume-from-crash possible.
type Job struct {
	ID         uuid.UUID `json:"id"`
	Kind       JobKind   `json:"kind"`
	NovelID    uuid.UUID `json:"novel_id"`
	NovelTitle string    `json:"novel_title"`
	NovelCover string    `json:"novel_cover,omitempty"`

	Status JobStatus `json:"status"`

	TargetChapters []int `json:"target_chapters"`
	ProcessedCount int   `json:"processed_count"`
	TotalToProcess int   `json:"total_to_process"`
	CurrentChapter int   `json:"current_chapter"`

	Logs []JobLogEntry `json:"logs"`

	// APIKeys optionally overrides the credential list from the stored
	// job settings for this run only.
	APIKeys []string `json:"api_keys,omitempty"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates an active job for the given novel targeting the given
// chapters. The chapter list is deduplicated and sorted ascending.
// Returns an error if validation fails.
func NewJob(kind JobKind, novel *Novel, chapters []int, apiKeys []string) (*Job, error) {
	targets := normalizeChapters(chapters)

	now := time.Now().UTC()
	job := &Job{
		ID:             uuid.New(),
		Kind:           kind,
		NovelID:        novel.ID,
		NovelTitle:     novel.Title,
		NovelCover:     novel.CoverURL,
		Status:         JobStatusActive,
		TargetChapters: targets,
		TotalToProcess: len(targets),
		Logs:           []JobLogEntry{},
		APIKeys:        apiKeys,
		StartedAt:      now,
		UpdatedAt:      now,
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}

	return job, nil
}

// normalizeChapters deduplicates and sorts a chapter list ascending.
func normalizeChapters(chapters []int) []int {
	seen := make(map[int]struct{}, len(chapters))
	out := make([]int, 0, len(chapters))
	for _, n := range chapters {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// Validate checks if the Job has valid data and holds its invariants:
// no duplicate target chapters, positive chapter numbers, and
// processed + remaining never exceeding the total.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}
	if j.NovelID == uuid.Nil {
		return ErrEmptyJobNovelID
	}
	if j.Kind != JobKindTranslation && j.Kind != JobKindTitleGeneration {
		return ErrInvalidJobKind
	}
	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}
	if len(j.TargetChapters) == 0 && j.TotalToProcess == 0 {
		return ErrNoTargetChapters
	}

	seen := make(map[int]struct{}, len(j.TargetChapters))
	for _, n := range j.TargetChapters {
		if n <= 0 {
			return ErrInvalidChapter
		}
		if _, ok := seen[n]; ok {
			return ErrDuplicateChapter
		}
		seen[n] = struct{}{}
	}

	// Skipping a chapter leaves it in the queue without growing the
	// processed count, so the sum can shrink below the total but never
	// exceed it.
	if j.ProcessedCount+len(j.TargetChapters) > j.TotalToProcess {
		return errors.New("processed count plus remaining chapters exceeds total")
	}

	return nil
}

// CanTransitionTo reports whether the status change is one of the allowed
// transitions: active→paused, paused→active, active→completed,
// active→failed. Terminal states require an explicit reset (a direct
// status write, not a transition) before a worker may touch the job again.
func (j *Job) CanTransitionTo(next JobStatus) bool {
	switch j.Status {
	case JobStatusActive:
		return next == JobStatusPaused || next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusPaused:
		return next == JobStatusActive
	default:
		return false
	}
}

// AppendLog adds an entry to the job's append-only log.
func (j *Job) AppendLog(level, message string) {
	j.Logs = append(j.Logs, JobLogEntry{
		Message: message,
		Level:   level,
		At:      time.Now().UTC(),
	})
	j.UpdatedAt = time.Now().UTC()
}

// MarkProcessed records a successfully completed chapter: increments the
// processed counter, sets the current-chapter watermark and removes the
// chapter from the target queue.
func (j *Job) MarkProcessed(chapter int) error {
	idx := slices.Index(j.TargetChapters, chapter)
	if idx < 0 {
		return ErrChapterNotInQueue
	}
	j.TargetChapters = slices.Delete(j.TargetChapters, idx, idx+1)
	j.ProcessedCount++
	j.CurrentChapter = chapter
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// MoveToFront moves the given chapter to the front of the target queue.
// Used by the rate-limit retry path so the same chapter is attempted next.
func (j *Job) MoveToFront(chapter int) error {
	idx := slices.Index(j.TargetChapters, chapter)
	if idx < 0 {
		return ErrChapterNotInQueue
	}
	j.TargetChapters = slices.Delete(j.TargetChapters, idx, idx+1)
	j.TargetChapters = slices.Insert(j.TargetChapters, 0, chapter)
	j.UpdatedAt = time.Now().UTC()
	return nil
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusActive, JobStatusPaused, JobStatusCompleted, JobStatusFailed:
		return true
	default:
		return false
	}
}
