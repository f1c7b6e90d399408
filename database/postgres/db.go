package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowback"
)

type column struct {
	name     string
	dataType string
}

// jobsSchema lists the jobs table in declaration order. Every column is NOT NULL.
var jobsSchema = []column{
	{"id", "uuid"},
	{"kind", "text"},
	{"mode", "text"},
	{"source_path", "text"},
	{"object_key", "text"},
	{"is_directory", "boolean"},
	{"is_compressed", "boolean"},
	{"status", "text"},
	{"error_kind", "text"},
	{"error_message", "text"},
	{"bytes", "bigint"},
	{"etag", "text"},
	{"started_at", "timestamp with time zone"},
	{"finished_at", "timestamp with time zone"},
}

type actualColumn struct {
	dataType string
	nullable bool
}

// ValidateSchema checks that the jobs table exists in the public schema and
// carries every column the repo reads and writes.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables stowback.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	actual, err := tableColumns(ctx, pool, tables.Jobs)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Jobs, err)
	}

	var missing, mismatched []string
	for _, want := range jobsSchema {
		got, ok := actual[want.name]
		switch {
		case !ok:
			missing = append(missing, want.name)
		case got.dataType != want.dataType:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", want.name, want.dataType, got.dataType))
		case got.nullable:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected NOT NULL", want.name))
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "validate schema %s: table does not match the job ledger:\n", tables.Jobs)
	if len(missing) > 0 {
		fmt.Fprintf(&msg, "  missing columns: %s\n", strings.Join(missing, ", "))
	}
	for _, m := range mismatched {
		fmt.Fprintf(&msg, "  - %s\n", m)
	}
	return errors.New(msg.String())
}

func tableColumns(ctx context.Context, pool *pgxpool.Pool, tableName string) (map[string]actualColumn, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)
	`, tableName).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check table exists: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]actualColumn)
	for rows.Next() {
		var name, dataType, nullable string
		if err := rows.Scan(&name, &dataType, &nullable); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns[name] = actualColumn{dataType: strings.ToLower(dataType), nullable: nullable == "YES"}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	return columns, nil
}
