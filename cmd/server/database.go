package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// Registers the pgx stdlib driver under the name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/aboodesafaagg-byte/riwaya-api/internal/config"
	"github.com/aboodesafaagg-byte/riwaya-api/migrations"
)

// setupDatabase establishes the database connection and configures the
// connection pool.
func setupDatabase(cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

// runMigrations brings the schema up to date from the embedded migration
// files.
func runMigrations(db *sql.DB, log *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Info("database schema up to date")
	return nil
}
