package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// NovelStatus represents the publication state of a novel.
type NovelStatus string

// Possible novel status values
const (
	// NovelStatusPrivate marks a novel that is not yet visible to readers.
	// The first successful chapter translation flips it to ongoing.
	NovelStatusPrivate   NovelStatus = "private"
	NovelStatusOngoing   NovelStatus = "ongoing"
	NovelStatusCompleted NovelStatus = "completed"
)

// Common validation errors for Novel
var (
	ErrEmptyNovelID      = errors.New("novel ID cannot be empty")
	ErrEmptyNovelTitle   = errors.New("novel title cannot be empty")
	ErrInvalidNovelState = errors.New("invalid novel status")
)

// Novel represents a work on the platform. Only metadata lives here;
// chapter body text is kept in the external content store.
type Novel struct {
	ID        uuid.UUID   `json:"id"`
	Title     string      `json:"title"`
	CoverURL  string      `json:"cover_url,omitempty"`
	Status    NovelStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Chapter is the relational mirror of one chapter: number and title only.
// The body text is addressed in the content store by (novel ID, number).
type Chapter struct {
	NovelID   uuid.UUID `json:"novel_id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks if the Novel has valid data.
func (n *Novel) Validate() error {
	if n.ID == uuid.Nil {
		return ErrEmptyNovelID
	}
	if n.Title == "" {
		return ErrEmptyNovelTitle
	}
	if !isValidNovelStatus(n.Status) {
		return ErrInvalidNovelState
	}
	return nil
}

// isValidNovelStatus checks if the given status is a valid NovelStatus.
func isValidNovelStatus(status NovelStatus) bool {
	switch status {
	case NovelStatusPrivate, NovelStatusOngoing, NovelStatusCompleted:
		return true
	default:
		return false
	}
}
