package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
)

// JobResponse is the body of a successful archive or restore.
type JobResponse struct {
	Success bool               `json:"success"`
	Job     stowback.JobRecord `json:"job"`
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Job     *stowback.JobRecord `json:"job,omitempty"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	writeError(w, code, ErrorResponse{Error: errCode, Message: message})
}

func writeError(w http.ResponseWriter, code int, resp ErrorResponse) {
	resp.Success = false
	if err := WriteJSON(w, code, resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// StatusCode maps a job error onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case stowback.IsMissing(err), errors.Is(err, stowback.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, stowback.ErrInvalidInput), errors.Is(err, stowback.ErrUnsupportedPathType):
		return http.StatusBadRequest
	case errors.Is(err, stowback.ErrJobsDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	HandleJobError(w, stowback.JobRecord{}, err)
}

// HandleJobError writes the error response for a failed job. The job record is
// included when the job got far enough to be assigned an ID.
func HandleJobError(w http.ResponseWriter, job stowback.JobRecord, err error) {
	code := StatusCode(err)
	if code == http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	}

	resp := ErrorResponse{
		Error:   stowback.ErrorKind(err),
		Message: err.Error(),
	}
	if job.ID != uuid.Nil {
		resp.Job = &job
	}

	writeError(w, code, resp)
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
