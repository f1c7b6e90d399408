package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/stowback"

	_ "modernc.org/sqlite" // SQLite driver
)

// DB is an open SQLite job ledger.
type DB struct {
	db     *sql.DB
	tables stowback.Tables
}

// Open opens the SQLite database at dsn. Tables are validated before use.
//
// The pool is limited to one connection: SQLite serialises writers anyway,
// and ":memory:" databases exist per connection.
func Open(ctx context.Context, dsn string, tables stowback.Tables) (*DB, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: set busy timeout: %w", err)
	}

	return &DB{db: db, tables: tables}, nil
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate runs database migrations to create required tables.
func (d *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, d.db, d.tables)
}

// Validate checks that the database schema matches expected structure.
func (d *DB) Validate(ctx context.Context) error {
	return ValidateSchema(ctx, d.db, d.tables)
}

// GetRepo returns the JobRepo for database operations.
func (d *DB) GetRepo() stowback.JobRepo {
	return &Repo{db: d.db, tableName: d.tables.Jobs}
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}
