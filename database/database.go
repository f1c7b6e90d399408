package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/database/postgres"
	"github.com/sagarc03/stowback/database/sqlite"
)

// Config holds the configuration for connecting to a job ledger backend.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `mapstructure:"type"`
	// DSN is the data source name (connection string)
	DSN string `mapstructure:"dsn"`
	// Tables holds the ledger table names
	Tables stowback.Tables `mapstructure:"tables"`
}

// Database is an open job ledger backend.
type Database interface {
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Validate(ctx context.Context) error
	GetRepo() stowback.JobRepo
	Close() error
}

// Open returns the backend selected by cfg.Type without touching the schema.
func Open(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.Open(ctx, cfg.DSN, cfg.Tables)
	case "postgres":
		return postgres.Open(ctx, cfg.DSN, cfg.Tables)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// Connect establishes a connection to the configured database backend,
// runs migrations, validates the schema, and returns a JobRepo.
// The returned cleanup function should be called to close the connection.
func Connect(ctx context.Context, cfg Config) (stowback.JobRepo, func(), error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if err = db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", cfg.Type, err)
	}

	if err = db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", cfg.Type, err)
	}

	if err = db.Validate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("validate %s schema: %w", cfg.Type, err)
	}

	cleanup := func() {
		_ = db.Close()
	}

	return db.GetRepo(), cleanup, nil
}
