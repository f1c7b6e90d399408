package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/stowback"
)

// column is one expected column of the jobs table. Every column is NOT NULL.
type column struct {
	name     string
	affinity string
}

// jobsSchema lists the jobs table in declaration order so validation
// failures read the same way every time.
var jobsSchema = []column{
	{"id", "text"},
	{"kind", "text"},
	{"mode", "text"},
	{"source_path", "text"},
	{"object_key", "text"},
	{"is_directory", "integer"},
	{"is_compressed", "integer"},
	{"status", "text"},
	{"error_kind", "text"},
	{"error_message", "text"},
	{"bytes", "integer"},
	{"etag", "text"},
	{"started_at", "text"},
	{"finished_at", "text"},
}

type actualColumn struct {
	affinity string
	notNull  bool
}

// ValidateSchema checks that the jobs table exists and carries every column
// the repo reads and writes.
func ValidateSchema(ctx context.Context, db *sql.DB, tables stowback.Tables) error {
	if err := tables.Validate(); err != nil {
		return fmt.Errorf("validate schema: %w", err)
	}

	actual, err := tableColumns(ctx, db, tables.Jobs)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", tables.Jobs, err)
	}

	var missing, mismatched []string
	for _, want := range jobsSchema {
		got, ok := actual[want.name]
		switch {
		case !ok:
			missing = append(missing, want.name)
		case got.affinity != want.affinity:
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", want.name, want.affinity, got.affinity))
		case !got.notNull:
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

// tableColumns reads the declared columns of tableName. A missing table is an
// error rather than an empty result.
func tableColumns(ctx context.Context, db *sql.DB, tableName string) (map[string]actualColumn, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tableName).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("check table exists: %w", err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(tableName)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := make(map[string]actualColumn)
	for rows.Next() {
		var (
			cid, notNull, pk int
			colName, ctype   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &colName, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		// A primary key column is implicitly required.
		columns[colName] = actualColumn{affinity: strings.ToLower(ctype), notNull: notNull == 1 || pk > 0}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	return columns, nil
}
