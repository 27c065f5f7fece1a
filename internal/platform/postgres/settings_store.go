package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
)

// PostgresSettingsStore implements the store.SettingsStore interface
// using a PostgreSQL database as the storage backend. One row per job
// kind; rows are lazily created with defaults on first read.
type PostgresSettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSettingsStore creates a new PostgreSQL implementation of the
// SettingsStore interface. If logger is nil, a default logger will be used.
func NewPostgresSettingsStore(db store.DBTX, logger *slog.Logger) *PostgresSettingsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSettingsStore{
		db:     db,
		logger: logger.With(slog.String("component", "settings_store")),
	}
}

// Ensure PostgresSettingsStore implements store.SettingsStore interface
var _ store.SettingsStore = (*PostgresSettingsStore)(nil)

// WithTx returns a new SettingsStore instance that uses the provided
// transaction.
func (s *PostgresSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore {
	return &PostgresSettingsStore{db: tx, logger: s.logger}
}

// GetByKind implements store.SettingsStore.GetByKind
func (s *PostgresSettingsStore) GetByKind(
	ctx context.Context,
	kind domain.JobKind,
	seedKeys []string,
) (*domain.JobSettings, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT kind, model_name, prompt_template, api_keys, updated_at
		FROM job_settings
		WHERE kind = $1
	`

	var (
		settings domain.JobSettings
		kindStr  string
		keys     []byte
	)

	err := s.db.QueryRowContext(ctx, query, kind).Scan(
		&kindStr,
		&settings.ModelName,
		&settings.PromptTemplate,
		&keys,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s.createDefaults(ctx, kind, seedKeys)
		}
		log.Error("failed to get job settings",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		return nil, err
	}

	settings.Kind = domain.JobKind(kindStr)
	if len(keys) > 0 {
		if err := json.Unmarshal(keys, &settings.APIKeys); err != nil {
			return nil, fmt.Errorf("failed to decode settings api keys: %w", err)
		}
	}

	return &settings, nil
}

// createDefaults inserts and returns the default settings row for a kind.
// A concurrent insert racing us is tolerated: on conflict the existing
// row wins and is read back.
func (s *PostgresSettingsStore) createDefaults(
	ctx context.Context,
	kind domain.JobKind,
	seedKeys []string,
) (*domain.JobSettings, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	settings, err := domain.DefaultJobSettings(kind, seedKeys)
	if err != nil {
		return nil, err
	}

	keys, err := json.Marshal(settings.APIKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings api keys: %w", err)
	}

	query := `
		INSERT INTO job_settings (kind, model_name, prompt_template, api_keys, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind) DO NOTHING
	`

	_, err = s.db.ExecContext(ctx, query,
		settings.Kind,
		settings.ModelName,
		settings.PromptTemplate,
		keys,
		settings.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create default job settings",
			slog.String("error", err.Error()),
			slog.String("kind", string(kind)))
		return nil, err
	}

	log.Info("created default job settings", slog.String("kind", string(kind)))
	return s.GetByKind(ctx, kind, seedKeys)
}

// Update implements store.SettingsStore.Update
func (s *PostgresSettingsStore) Update(ctx context.Context, settings *domain.JobSettings) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	keys, err := json.Marshal(settings.APIKeys)
	if err != nil {
		return fmt.Errorf("failed to encode settings api keys: %w", err)
	}

	query := `
		INSERT INTO job_settings (kind, model_name, prompt_template, api_keys, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kind)
		DO UPDATE SET
			model_name = EXCLUDED.model_name,
			prompt_template = EXCLUDED.prompt_template,
			api_keys = EXCLUDED.api_keys,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		settings.Kind,
		settings.ModelName,
		settings.PromptTemplate,
		keys,
		time.Now().UTC(),
	)
	if err != nil {
		log.Error("failed to update job settings",
			slog.String("error", err.Error()),
			slog.String("kind", string(settings.Kind)))
		return err
	}

	log.Info("job settings updated", slog.String("kind", string(settings.Kind)))
	return nil
}
