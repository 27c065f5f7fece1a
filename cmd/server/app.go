package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/contentstore"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/gemini"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/postgres"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/service/auth"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/store"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/task"
)

// application bundles the wired components of the server process.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	novelStore store.NovelStore

	jwtService auth.JWTService
	verifier   auth.Verifier

	runner          *task.Runner
	jobService      *service.JobService
	glossaryService *service.GlossaryService
	settingsService *service.SettingsService
}

// newApplication wires the stores, pipeline workers and services over the
// given database connection.
func newApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	jobStore := postgres.NewPostgresJobStore(db, log)
	novelStore := postgres.NewPostgresNovelStore(db, log)
	glossaryStore := postgres.NewPostgresGlossaryStore(db, log)
	settingsStore := postgres.NewPostgresSettingsStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	factory := task.NewPipelineFactory(task.Deps{
		Jobs:      jobStore,
		Novels:    novelStore,
		Glossary:  glossaryStore,
		Settings:  settingsStore,
		Content:   contentstore.NewClient(cfg.ContentStore, log),
		Generator: gemini.NewGenerator(cfg.LLM, log),
		Logger:    log,
	})

	runner := task.NewRunner(jobStore, factory, task.RunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, log)

	return &application{
		config:          cfg,
		logger:          log,
		db:              db,
		novelStore:      novelStore,
		jwtService:      jwtService,
		verifier:        auth.NewOperatorVerifier(cfg.Auth),
		runner:          runner,
		jobService:      service.NewJobService(jobStore, novelStore, db, factory, runner, log),
		glossaryService: service.NewGlossaryService(glossaryStore, novelStore, db, log),
		settingsService: service.NewSettingsService(settingsStore, cfg.LLM.APIKeys, log),
	}, nil
}

// Run starts the background runner and the HTTP server, then blocks until
// a shutdown signal arrives. Interrupted jobs stay active in the database
// and are recovered on the next start.
func (app *application) Run(ctx context.Context) error {
	if err := app.runner.Start(); err != nil {
		return fmt.Errorf("failed to start job runner: %w", err)
	}
	defer app.runner.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", app.config.Server.Port),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverCtx, cancelServer := context.WithCancel(ctx)
	defer cancelServer()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Error("server failed", "error", err)
			cancelServer()
		}
	}()

	select {
	case <-shutdownCh:
		app.logger.Info("shutting down server")
	case <-serverCtx.Done():
		app.logger.Info("server context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
