package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowback"
)

// DB is an open PostgreSQL job ledger.
type DB struct {
	pool   *pgxpool.Pool
	tables stowback.Tables
}

// Open creates a connection pool for dsn. Tables are validated before use.
func Open(ctx context.Context, dsn string, tables stowback.Tables) (*DB, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	return &DB{pool: pool, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.pool, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.pool, d.tables)
}

// GetRepo returns the JobRepo for database operations.
func (d *DB) GetRepo() stowback.JobRepo {
	return &Repo{pool: d.pool, tableName: d.tables.Jobs}
}

// Close closes the database connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}
