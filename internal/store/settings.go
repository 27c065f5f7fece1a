package store

import (
	"context"
	"database/sql"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
)

// SettingsStore defines the interface for per-kind job settings.
type SettingsStore interface {
	// GetByKind retrieves the settings row for a job kind, lazily creating
	// it with defaults (seeded with the given fallback keys) when absent.
	GetByKind(ctx context.Context, kind domain.JobKind, seedKeys []string) (*domain.JobSettings, error)

	// Update overwrites the settings row for the given kind.
	Update(ctx context.Context, settings *domain.JobSettings) error

	// WithTx returns a new SettingsStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SettingsStore
}
