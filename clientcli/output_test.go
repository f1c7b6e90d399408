package clientcli_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/clientcli"
)

func sampleJob(kind stowback.JobKind, path string, size int64) stowback.JobRecord {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := stowback.JobRecord{
		ID:          uuid.New(),
		Kind:        kind,
		SourcePath:  path,
		ObjectKey:   "k",
		IsDirectory: true,
		Status:      stowback.StatusSucceeded,
		Bytes:       size,
		StartedAt:   started,
		FinishedAt:  started.Add(1500 * time.Millisecond),
	}
	if kind == stowback.KindRestore {
		job.Mode = stowback.ModeMerge
	}
	return job
}

func TestNewFormatter(t *testing.T) {
	t.Run("json formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(true, false)
		_, ok := formatter.(*clientcli.JSONFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, false)
		_, ok := formatter.(*clientcli.HumanFormatter)
		assert.True(t, ok)
	})

	t.Run("human formatter quiet", func(t *testing.T) {
		formatter := clientcli.NewFormatter(false, true)
		hf, ok := formatter.(*clientcli.HumanFormatter)
		require.True(t, ok)
		assert.True(t, hf.Quiet)
	})
}

func TestHumanFormatter_FormatJobs(t *testing.T) {
	archived := sampleJob(stowback.KindArchive, "/srv/data/", 2048)
	restored := sampleJob(stowback.KindRestore, "/srv/data/", 2048)
	results := []clientcli.JobResult{
		{Path: "/srv/data/", Job: archived},
		{Path: "/srv/data/", Job: restored},
		{Path: "/missing", Err: errors.New("server error: 404 source_not_found: gone")},
	}

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatJobs(&buf, results))

		output := buf.String()
		assert.Contains(t, output, "Archived: /srv/data/ (2.0 KB, 1.5s)")
		assert.Contains(t, output, "Restored (merge): /srv/data/")
		assert.Contains(t, output, "Job: "+archived.ID.String())
		assert.Contains(t, output, "Error: /missing - server error: 404 source_not_found: gone")
	})

	t.Run("quiet only prints errors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{Quiet: true}).FormatJobs(&buf, results))

		assert.Equal(t, "Error: /missing - server error: 404 source_not_found: gone\n", buf.String())
	})
}

func TestHumanFormatter_FormatJob(t *testing.T) {
	job := sampleJob(stowback.KindRestore, "/srv/data/", 10)
	job.Status = stowback.StatusFailed
	job.ErrorKind = "archive_corrupt"
	job.ErrorMessage = "unexpected EOF"
	job.ETag = "abc123"

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatJob(&buf, &job))

	output := buf.String()
	assert.Contains(t, output, "ID:         "+job.ID.String())
	assert.Contains(t, output, "Mode:       merge")
	assert.Contains(t, output, "Status:     failed")
	assert.Contains(t, output, "Error:      archive_corrupt: unexpected EOF")
	assert.Contains(t, output, "ETag:       abc123")
}

func TestHumanFormatter_FormatJobList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatJobList(&buf, &clientcli.JobList{}))
		assert.Equal(t, "No jobs found\n", buf.String())
	})

	t.Run("table with cursor", func(t *testing.T) {
		failed := sampleJob(stowback.KindRestore, "/srv/b", 0)
		failed.Status = stowback.StatusFailed
		list := &clientcli.JobList{
			Items: []stowback.JobRecord{
				sampleJob(stowback.KindArchive, "/srv/a/", 1024),
				failed,
			},
			NextCursor: "abc",
		}

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatJobList(&buf, list))

		output := buf.String()
		assert.Contains(t, output, "STARTED")
		assert.Contains(t, output, "/srv/a/")
		assert.Contains(t, output, "2 job(s), 1 failed (1.0 KB total)")
		assert.Contains(t, output, `--cursor "abc"`)
	})

	t.Run("long paths keep their tail", func(t *testing.T) {
		long := "/srv/" + string(bytes.Repeat([]byte("x"), 80)) + "/leaf.txt"
		list := &clientcli.JobList{Items: []stowback.JobRecord{sampleJob(stowback.KindArchive, long, 1)}}

		var buf bytes.Buffer
		require.NoError(t, (&clientcli.HumanFormatter{}).FormatJobList(&buf, list))
		assert.Contains(t, buf.String(), "...")
		assert.Contains(t, buf.String(), "leaf.txt")
	})
}

func TestHumanFormatter_Profiles(t *testing.T) {
	profiles := []clientcli.Profile{
		{Name: "local", Endpoint: "http://localhost:5708"},
		{Name: "nas", Endpoint: "http://nas:5708", Timeout: 2 * time.Hour},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileList(&buf, profiles, "nas"))
	assert.Contains(t, buf.String(), "* nas ")
	assert.Contains(t, buf.String(), "  local")

	buf.Reset()
	require.NoError(t, (&clientcli.HumanFormatter{}).FormatProfileShow(&buf, profiles[1], true))
	assert.Contains(t, buf.String(), "Name:     nas (default)")
	assert.Contains(t, buf.String(), "Endpoint: http://nas:5708")
	assert.Contains(t, buf.String(), "Timeout:  2h0m0s")
}

func TestJSONFormatter_FormatJobs(t *testing.T) {
	job := sampleJob(stowback.KindArchive, "/srv/a", 5)
	results := []clientcli.JobResult{
		{Path: "/srv/a", Job: job},
		{Path: "/srv/b", Err: errors.New("boom")},
	}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatJobs(&buf, results))

	var out struct {
		Results []struct {
			Path  string              `json:"path"`
			Job   *stowback.JobRecord `json:"job"`
			Error string              `json:"error"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Results, 2)

	require.NotNil(t, out.Results[0].Job)
	assert.Equal(t, job.ID, out.Results[0].Job.ID)
	assert.Empty(t, out.Results[0].Error)

	assert.Nil(t, out.Results[1].Job)
	assert.Equal(t, "boom", out.Results[1].Error)
}

func TestJSONFormatter_FormatJobList(t *testing.T) {
	list := &clientcli.JobList{Items: []stowback.JobRecord{sampleJob(stowback.KindArchive, "/srv/a", 5)}, NextCursor: "next"}

	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatJobList(&buf, list))

	var out clientcli.JobList
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "next", out.NextCursor)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "/srv/a", out.Items[0].SourcePath)
}

func TestJSONFormatter_FormatError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatError(&buf, errors.New("test error")))

	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "test error", out["error"])
}

func TestJSONFormatter_Profiles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&clientcli.JSONFormatter{}).FormatProfileList(&buf, []clientcli.Profile{{Name: "a", Endpoint: "http://a"}}, "a"))

	var out struct {
		Profiles []struct {
			Name    string `json:"name"`
			Default bool   `json:"default"`
		} `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Profiles, 1)
	assert.True(t, out.Profiles[0].Default)
}
