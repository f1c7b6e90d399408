package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowback"
)

// Migrate creates the job ledger table and its indexes if they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables stowback.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := createJobsTable(ctx, pool, tables.Jobs); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// DropTables removes the job ledger table.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables stowback.Tables) error {
	quotedTable := pgx.Identifier{tables.Jobs}.Sanitize()
	if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quotedTable)); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func createJobsTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()
	indexStarted := pgx.Identifier{fmt.Sprintf("idx_%s_started", tableName)}.Sanitize()
	indexSourcePath := pgx.Identifier{fmt.Sprintf("idx_%s_source_path", tableName)}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			source_path TEXT NOT NULL,
			object_key TEXT NOT NULL,
			is_directory BOOLEAN NOT NULL,
			is_compressed BOOLEAN NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT NOT NULL,
			error_message TEXT NOT NULL,
			bytes BIGINT NOT NULL,
			etag TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);

		ALTER TABLE %s ADD COLUMN IF NOT EXISTS etag TEXT NOT NULL DEFAULT '';

		CREATE INDEX IF NOT EXISTS %s
		ON %s (started_at DESC, id DESC);

		CREATE INDEX IF NOT EXISTS %s
		ON %s (source_path text_pattern_ops);
	`,
		quotedTable,
		quotedTable,
		indexStarted, quotedTable,
		indexSourcePath, quotedTable,
	)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}
	return nil
}
