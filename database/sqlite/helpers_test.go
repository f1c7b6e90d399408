package sqlite_test

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/database/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// setupTestRepo creates a repo with a unique table name for test isolation
func setupTestRepo(t *testing.T) stowback.JobRepo {
	t.Helper()

	ctx := context.Background()

	tables := stowback.Tables{Jobs: fmt.Sprintf("jobs_%s", getRandomString(t))}

	db, err := sqlite.Open(ctx, ":memory:", tables)
	require.NoError(t, err, "failed to open")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx), "failed to migrate")

	return db.GetRepo()
}

func newJob(path string, startedAt time.Time) stowback.JobRecord {
	return stowback.JobRecord{
		ID:           uuid.New(),
		Kind:         stowback.KindArchive,
		SourcePath:   path,
		ObjectKey:    path[1:],
		IsDirectory:  true,
		IsCompressed: true,
		Status:       stowback.StatusSucceeded,
		Bytes:        1024,
		ETag:         "d41d8cd98f00b204e9800998ecf8427e",
		StartedAt:    startedAt,
		FinishedAt:   startedAt.Add(150 * time.Millisecond),
	}
}
