package http_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback"
	stowbackhttp "github.com/sagarc03/stowback/http"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{stowback.ErrSourceNotFound, http.StatusNotFound},
		{stowback.ErrObjectNotFound, http.StatusNotFound},
		{stowback.ErrNotFound, http.StatusNotFound},
		{stowback.ErrInvalidInput, http.StatusBadRequest},
		{stowback.ErrUnsupportedPathType, http.StatusBadRequest},
		{stowback.ErrJobsDisabled, http.StatusNotImplemented},
		{stowback.ErrUploadFailed, http.StatusInternalServerError},
		{stowback.ErrArchiveCorrupt, http.StatusInternalServerError},
		{stowback.ErrCompressionMismatch, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("restore: %w", tt.err)
			assert.Equal(t, tt.want, stowbackhttp.StatusCode(wrapped))
		})
	}
}

func TestHandleError_Body(t *testing.T) {
	rec := httptest.NewRecorder()

	stowbackhttp.HandleError(rec, fmt.Errorf("archive: %w", stowback.ErrSourceNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "source_not_found", body["error"])
	assert.Equal(t, "archive: source not found", body["message"])
	assert.NotContains(t, body, "job")
}

func TestHandleJobError_IncludesJob(t *testing.T) {
	rec := httptest.NewRecorder()
	job := stowback.JobRecord{ID: uuid.New(), Kind: stowback.KindRestore, Status: stowback.StatusFailed}

	stowbackhttp.HandleJobError(rec, job, stowback.ErrArchiveCorrupt)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body stowbackhttp.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "archive_corrupt", body.Error)
	require.NotNil(t, body.Job)
	assert.Equal(t, job.ID, body.Job.ID)
}

func TestHandleError_Internal(t *testing.T) {
	rec := httptest.NewRecorder()

	stowbackhttp.HandleError(rec, errors.New("some unexpected error"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	err := stowbackhttp.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}
