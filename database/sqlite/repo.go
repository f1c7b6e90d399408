// Package sqlite implements the job ledger using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/database/internal"
)

// timeFormat is fixed width so that text comparison orders like time.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

const jobColumns = `id, kind, mode, source_path, object_key, is_directory, is_compressed,
	status, error_kind, error_message, bytes, etag, started_at, finished_at`

type Repo struct {
	db        *sql.DB
	tableName string
}

// NewRepo returns a job ledger over an already migrated table.
func NewRepo(db *sql.DB, tables stowback.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}
	return &Repo{db: db, tableName: tables.Jobs}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func (r *Repo) Insert(ctx context.Context, job stowback.JobRecord) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.tableName, jobColumns)

	_, err := r.db.ExecContext(ctx, query,
		job.ID.String(), string(job.Kind), string(job.Mode), job.SourcePath, job.ObjectKey,
		job.IsDirectory, job.IsCompressed, string(job.Status), job.ErrorKind, job.ErrorMessage,
		job.Bytes, job.ETag, formatTime(job.StartedAt), formatTime(job.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (stowback.JobRecord, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT %s FROM %s WHERE id = ?`, jobColumns, r.tableName)

	job, err := scanJob(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stowback.JobRecord{}, fmt.Errorf("get: %w", stowback.ErrNotFound)
		}
		return stowback.JobRecord{}, fmt.Errorf("get: %w", err)
	}
	return job, nil
}

func (r *Repo) List(ctx context.Context, q stowback.JobQuery) (stowback.JobList, error) {
	cursor, err := internal.DecodeCursor(q.Cursor)
	if err != nil {
		return stowback.JobList{}, fmt.Errorf("list: %w: %w", stowback.ErrInvalidInput, err)
	}

	limit := internal.PageLimit(q.Limit, internal.DefaultPageLimit, internal.MaxPageLimit)
	escapedPrefix := internal.EscapeLikePattern(q.PathPrefix)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE source_path LIKE ? || '%%' ESCAPE '\'
			ORDER BY started_at DESC, id DESC
			LIMIT ?
		`, jobColumns, r.tableName)
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE source_path LIKE ? || '%%' ESCAPE '\' AND (started_at, id) < (?, ?)
			ORDER BY started_at DESC, id DESC
			LIMIT ?
		`, jobColumns, r.tableName)
		args = []any{escapedPrefix, formatTime(cursor.StartedAt), cursor.ID, limit + 1}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return stowback.JobList{}, fmt.Errorf("list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]stowback.JobRecord, 0, limit)
	for rows.Next() {
		job, scanErr := scanJob(rows)
		if scanErr != nil {
			return stowback.JobList{}, fmt.Errorf("list: %w", scanErr)
		}
		items = append(items, job)
	}

	if err := rows.Err(); err != nil {
		return stowback.JobList{}, fmt.Errorf("list: rows: %w", err)
	}

	var nextCursor string
	if len(items) > limit {
		last := items[limit-1]
		nextCursor = internal.EncodeCursor(last.StartedAt, last.ID.String())
		items = items[:limit]
	}

	return stowback.JobList{Items: items, NextCursor: nextCursor}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (stowback.JobRecord, error) {
	var (
		job                   stowback.JobRecord
		idStr, kind, mode     string
		status                string
		startedAt, finishedAt string
	)

	err := row.Scan(
		&idStr, &kind, &mode, &job.SourcePath, &job.ObjectKey, &job.IsDirectory, &job.IsCompressed,
		&status, &job.ErrorKind, &job.ErrorMessage, &job.Bytes, &job.ETag, &startedAt, &finishedAt,
	)
	if err != nil {
		return stowback.JobRecord{}, err
	}

	job.ID, err = uuid.Parse(idStr)
	if err != nil {
		return stowback.JobRecord{}, fmt.Errorf("parse uuid: %w", err)
	}

	job.StartedAt, err = time.Parse(timeFormat, startedAt)
	if err != nil {
		return stowback.JobRecord{}, fmt.Errorf("parse started_at: %w", err)
	}

	job.FinishedAt, err = time.Parse(timeFormat, finishedAt)
	if err != nil {
		return stowback.JobRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}

	job.Kind = stowback.JobKind(kind)
	job.Mode = stowback.RestoreMode(mode)
	job.Status = stowback.JobStatus(status)

	return job, nil
}
