package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/database/sqlite"
)

func TestRepo_InsertGet(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	started := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	job := newJob("/srv/www", started)
	job.Kind = stowback.KindRestore
	job.Mode = stowback.ModeReplace
	job.Status = stowback.StatusFailed
	job.ErrorKind = "object_not_found"
	job.ErrorMessage = "restore: object not found"

	require.NoError(t, repo.Insert(ctx, job))

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Kind, got.Kind)
	assert.Equal(t, job.Mode, got.Mode)
	assert.Equal(t, job.SourcePath, got.SourcePath)
	assert.Equal(t, job.ObjectKey, got.ObjectKey)
	assert.True(t, got.IsDirectory)
	assert.True(t, got.IsCompressed)
	assert.Equal(t, job.Status, got.Status)
	assert.Equal(t, job.ErrorKind, got.ErrorKind)
	assert.Equal(t, job.ErrorMessage, got.ErrorMessage)
	assert.Equal(t, job.Bytes, got.Bytes)
	assert.Equal(t, job.ETag, got.ETag)
	assert.True(t, job.StartedAt.Equal(got.StartedAt))
	assert.True(t, job.FinishedAt.Equal(got.FinishedAt))
}

func TestRepo_Insert_DuplicateID(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	job := newJob("/srv/www", time.Now())
	require.NoError(t, repo.Insert(ctx, job))
	assert.Error(t, repo.Insert(ctx, job))
}

func TestRepo_Get_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, stowback.ErrNotFound)
}

func TestRepo_List_NewestFirst(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := range 5 {
		// Nanosecond steps catch lexical ordering bugs in stored timestamps.
		job := newJob("/srv/www", base.Add(time.Duration(i)*time.Second+time.Duration(i*7)))
		require.NoError(t, repo.Insert(ctx, job))
		ids = append(ids, job.ID)
	}

	res, err := repo.List(ctx, stowback.JobQuery{})
	require.NoError(t, err)
	require.Len(t, res.Items, 5)
	assert.Empty(t, res.NextCursor)

	for i, item := range res.Items {
		assert.Equal(t, ids[4-i], item.ID)
	}
}

func TestRepo_List_Pagination(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 7 {
		require.NoError(t, repo.Insert(ctx, newJob("/srv/www", base.Add(time.Duration(i)*time.Minute))))
	}
	// Two jobs sharing a start time are ordered by id.
	require.NoError(t, repo.Insert(ctx, newJob("/srv/www", base.Add(3*time.Minute))))

	seen := make(map[uuid.UUID]bool)
	var cursor string
	var pages int
	var last time.Time
	for {
		res, err := repo.List(ctx, stowback.JobQuery{Limit: 3, Cursor: cursor})
		require.NoError(t, err)
		pages++

		for _, item := range res.Items {
			assert.False(t, seen[item.ID], "duplicate item %s", item.ID)
			seen[item.ID] = true
			if !last.IsZero() {
				assert.False(t, item.StartedAt.After(last))
			}
			last = item.StartedAt
		}

		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}

	assert.Len(t, seen, 8)
	assert.Equal(t, 3, pages)
}

func TestRepo_List_PathPrefix(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	now := time.Now()
	for _, p := range []string{"/srv/www", "/srv/www/static", "/srv/api", "/etc/app_1", "/etc/appx1"} {
		require.NoError(t, repo.Insert(ctx, newJob(p, now)))
	}

	tests := []struct {
		prefix string
		want   int
	}{
		{"", 5},
		{"/srv", 3},
		{"/srv/www", 2},
		{"/etc/app_", 1},
		{"/nope", 0},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			res, err := repo.List(ctx, stowback.JobQuery{PathPrefix: tt.prefix})
			require.NoError(t, err)
			assert.Len(t, res.Items, tt.want)
		})
	}
}

func TestRepo_List_InvalidCursor(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.List(context.Background(), stowback.JobQuery{Cursor: "not base64!"})
	assert.ErrorIs(t, err, stowback.ErrInvalidInput)
}

func TestNewRepo_InvalidTables(t *testing.T) {
	_, err := sqlite.NewRepo(nil, stowback.Tables{Jobs: "Bad-Name"})
	assert.Error(t, err)
}
