package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TermCategory classifies a glossary term.
type TermCategory string

// Accepted glossary term categories
const (
	TermCategoryCharacters TermCategory = "characters"
	TermCategoryLocations  TermCategory = "locations"
	TermCategoryItems      TermCategory = "items"
	TermCategoryRanks      TermCategory = "ranks"
	TermCategoryOther      TermCategory = "other"
)

// Common validation errors for GlossaryTerm
var (
	ErrEmptyTermNovelID     = errors.New("glossary term novel ID cannot be empty")
	ErrEmptyTerm            = errors.New("glossary term cannot be empty")
	ErrEmptyTermTranslation = errors.New("glossary term translation cannot be empty")
)

// categorySynonyms maps the singular/loose category names the extraction
// model tends to emit onto the canonical categories.
var categorySynonyms = map[string]TermCategory{
	"character":  TermCategoryCharacters,
	"characters": TermCategoryCharacters,
	"location":   TermCategoryLocations,
	"locations":  TermCategoryLocations,
	"place":      TermCategoryLocations,
	"item":       TermCategoryItems,
	"items":      TermCategoryItems,
	"rank":       TermCategoryRanks,
	"ranks":      TermCategoryRanks,
	"concept":    TermCategoryOther,
	"other":      TermCategoryOther,
}

// NormalizeTermCategory maps a free-form category string from the extraction
// model onto one of the accepted categories. Unrecognized values coerce to
// "other" rather than failing the term.
func NormalizeTermCategory(raw string) TermCategory {
	if c, ok := categorySynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return TermCategoryOther
}

// GlossaryTerm is a (novel, source term) keyed translation entry used as
// context when translating later chapters. Terms are either extracted
// automatically by the translation pipeline or entered by an operator.
type GlossaryTerm struct {
	ID            uuid.UUID    `json:"id"`
	NovelID       uuid.UUID    `json:"novel_id"`
	Term          string       `json:"term"`
	Translation   string       `json:"translation"`
	Category      TermCategory `json:"category"`
	Description   string       `json:"description,omitempty"`
	AutoGenerated bool         `json:"auto_generated"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewGlossaryTerm creates a glossary term, coercing the category through
// NormalizeTermCategory. Returns an error if validation fails.
func NewGlossaryTerm(
	novelID uuid.UUID,
	term, translation string,
	category TermCategory,
	description string,
	autoGenerated bool,
) (*GlossaryTerm, error) {
	now := time.Now().UTC()
	gt := &GlossaryTerm{
		ID:            uuid.New(),
		NovelID:       novelID,
		Term:          strings.TrimSpace(term),
		Translation:   strings.TrimSpace(translation),
		Category:      NormalizeTermCategory(string(category)),
		Description:   strings.TrimSpace(description),
		AutoGenerated: autoGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := gt.Validate(); err != nil {
		return nil, err
	}

	return gt, nil
}

// Validate checks if the GlossaryTerm has valid data.
func (t *GlossaryTerm) Validate() error {
	if t.NovelID == uuid.Nil {
		return ErrEmptyTermNovelID
	}
	if t.Term == "" {
		return ErrEmptyTerm
	}
	if t.Translation == "" {
		return ErrEmptyTermTranslation
	}
	return nil
}
