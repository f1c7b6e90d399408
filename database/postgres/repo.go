// Package postgres implements the job ledger using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/database/internal"
)

const jobColumns = `id, kind, mode, source_path, object_key, is_directory, is_compressed,
	status, error_kind, error_message, bytes, etag, started_at, finished_at`

type Repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func NewRepo(pool *pgxpool.Pool, tables stowback.Tables) (*Repo, error) {
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("new repo: %w", err)
	}

	return &Repo{pool: pool, tableName: pgx.Identifier{tables.Jobs}.Sanitize()}, nil
}

// Ping verifies database connectivity
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repo) Insert(ctx context.Context, job stowback.JobRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, r.tableName, jobColumns)

	_, err := r.pool.Exec(ctx, query,
		job.ID, string(job.Kind), string(job.Mode), job.SourcePath, job.ObjectKey,
		job.IsDirectory, job.IsCompressed, string(job.Status), job.ErrorKind, job.ErrorMessage,
		job.Bytes, job.ETag, job.StartedAt, job.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id uuid.UUID) (stowback.JobRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, jobColumns, r.tableName)

	job, err := scanJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

	var cursorID uuid.UUID
	if q.Cursor != "" {
		cursorID, err = uuid.Parse(cursor.ID)
		if err != nil {
			return stowback.JobList{}, fmt.Errorf("list: %w: cursor id: %w", stowback.ErrInvalidInput, err)
		}
	}

	limit := internal.PageLimit(q.Limit, internal.DefaultPageLimit, internal.MaxPageLimit)
	escapedPrefix := internal.EscapeLikePattern(q.PathPrefix)

	var query string
	var args []any

	if q.Cursor == "" {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE source_path LIKE $1::text || '%%'
			ORDER BY started_at DESC, id DESC
			LIMIT $2
		`, jobColumns, r.tableName)
		args = []any{escapedPrefix, limit + 1}
	} else {
		query = fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE source_path LIKE $1::text || '%%' AND (started_at, id) < ($2::timestamptz, $3::uuid)
			ORDER BY started_at DESC, id DESC
			LIMIT $4
		`, jobColumns, r.tableName)
		args = []any{escapedPrefix, cursor.StartedAt, cursorID, limit + 1}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return stowback.JobList{}, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	items := make([]stowback.JobRecord, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return stowback.JobList{}, fmt.Errorf("list: scan: %w", err)
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

func scanJob(row pgx.Row) (stowback.JobRecord, error) {
	var (
		job                stowback.JobRecord
		kind, mode, status string
	)

	err := row.Scan(
		&job.ID, &kind, &mode, &job.SourcePath, &job.ObjectKey, &job.IsDirectory, &job.IsCompressed,
		&status, &job.ErrorKind, &job.ErrorMessage, &job.Bytes, &job.ETag, &job.StartedAt, &job.FinishedAt,
	)
	if err != nil {
		return stowback.JobRecord{}, err
	}

	job.Kind = stowback.JobKind(kind)
	job.Mode = stowback.RestoreMode(mode)
	job.Status = stowback.JobStatus(status)

	return job, nil
}
