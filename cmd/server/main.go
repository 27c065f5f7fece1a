package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/aboodesafaagg-byte/riwaya-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("failed to close database", "error", cerr)
		}
	}()

	if err := runMigrations(db, log); err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}

	return app.Run(context.Background())
}
