package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/stowback"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the job ledger table and its indexes if they are missing.
func Migrate(ctx context.Context, db *sql.DB, tables stowback.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := createJobsTable(ctx, db, tables.Jobs); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := addEtagColumn(ctx, db, tables.Jobs); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// addEtagColumn upgrades ledgers created before jobs recorded the store's ETag.
func addEtagColumn(ctx context.Context, db *sql.DB, tableName string) error {
	columns, err := tableColumns(ctx, db, tableName)
	if err != nil {
		return fmt.Errorf("add etag column: %w", err)
	}
	if _, ok := columns["etag"]; ok {
		return nil
	}

	alterSQL := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN etag TEXT NOT NULL DEFAULT ''`, quoteIdentifier(tableName))
	if _, err := db.ExecContext(ctx, alterSQL); err != nil {
		return fmt.Errorf("add etag column: %w", err)
	}
	return nil
}

// DropTables removes the job ledger table.
func DropTables(ctx context.Context, db *sql.DB, tables stowback.Tables) error {
	dropSQL := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tables.Jobs))
	if _, err := db.ExecContext(ctx, dropSQL); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return nil
}

func createJobsTable(ctx context.Context, db *sql.DB, tableName string) error {
	quotedTable := quoteIdentifier(tableName)
	indexStarted := quoteIdentifier(fmt.Sprintf("idx_%s_started", tableName))
	indexSourcePath := quoteIdentifier(fmt.Sprintf("idx_%s_source_path", tableName))

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT NOT NULL PRIMARY KEY,
			kind TEXT NOT NULL,
			mode TEXT NOT NULL,
			source_path TEXT NOT NULL,
			object_key TEXT NOT NULL,
			is_directory INTEGER NOT NULL,
			is_compressed INTEGER NOT NULL,
			status TEXT NOT NULL,
			error_kind TEXT NOT NULL,
			error_message TEXT NOT NULL,
			bytes INTEGER NOT NULL,
			etag TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)
	`, quotedTable)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	indexSQL := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s (started_at DESC, id DESC)
	`, indexStarted, quotedTable)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create index started: %w", err)
	}

	indexSQL = fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s (source_path)
	`, indexSourcePath, quotedTable)

	if _, err := db.ExecContext(ctx, indexSQL); err != nil {
		return fmt.Errorf("create index source_path: %w", err)
	}

	return nil
}
