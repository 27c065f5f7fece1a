package service

import (
	"context"
	"log/slog"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/domain"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
)

// UpdateSettingsParams carries the editable fields of per-kind pipeline
// settings. Zero values leave the stored field unchanged.
type UpdateSettingsParams struct {
	ModelName      string
	PromptTemplate string
	APIKeys        []string
}

// SettingsService reads and updates the per-kind pipeline settings. Rows
// are created lazily with defaults; the seed keys (from process config)
// populate the credential list of a freshly created row.
type SettingsService struct {
	settings store.SettingsStore
	seedKeys []string
	logger   *slog.Logger
}

// NewSettingsService creates a SettingsService. If lg is nil, a default
// logger will be used.
func NewSettingsService(settings store.SettingsStore, seedKeys []string, lg *slog.Logger) *SettingsService {
	if lg == nil {
		lg = slog.Default()
	}
	return &SettingsService{
		settings: settings,
		seedKeys: seedKeys,
		logger:   lg.With(slog.String("component", "settings_service")),
	}
}

// Get returns the settings for a job kind, creating the default row if
// none exists yet.
func (s *SettingsService) Get(ctx context.Context, kind domain.JobKind) (*domain.JobSettings, error) {
	if kind != domain.JobKindTranslation && kind != domain.JobKindTitleGeneration {
		return nil, domain.ErrInvalidSettingsKind
	}
	return s.settings.GetByKind(ctx, kind, s.seedKeys)
}

// Update overwrites the editable settings fields for a kind. Omitted
// fields keep their stored value.
func (s *SettingsService) Update(ctx context.Context, kind domain.JobKind, params UpdateSettingsParams) (*domain.JobSettings, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.Get(ctx, kind)
	if err != nil {
		return nil, err
	}

	if params.ModelName != "" {
		current.ModelName = params.ModelName
	}
	if params.PromptTemplate != "" {
		current.PromptTemplate = params.PromptTemplate
	}
	if params.APIKeys != nil {
		current.APIKeys = params.APIKeys
	}

	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}

	log.Info("job settings updated",
		slog.String("kind", string(kind)),
		slog.String("model", current.ModelName),
		slog.Int("api_keys", len(current.APIKeys)))
	return current, nil
}
