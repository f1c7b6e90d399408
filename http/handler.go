package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
)

// ReservedPrefix is the path prefix of the service's own endpoints. Filesystem
// paths under it cannot be archived over HTTP.
const ReservedPrefix = "/-"

type Service interface {
	Archive(ctx context.Context, path string) (stowback.JobRecord, error)
	Restore(ctx context.Context, path string, mode stowback.RestoreMode) (stowback.JobRecord, error)
	ListJobs(ctx context.Context, q stowback.JobQuery) (stowback.JobList, error)
	GetJob(ctx context.Context, id uuid.UUID) (stowback.JobRecord, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	CORS CORSConfig
	// Metrics, when set, is served at /-/metrics.
	Metrics http.Handler
}

// Handler provides HTTP handlers for archive and restore operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
//
// Any path outside /-/ is a filesystem path: GET archives it, PUT restores it
// replacing directory contents and POST restores it merging into them.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Route(ReservedPrefix, func(r chi.Router) {
		r.Get("/healthz", h.handleHealth)
		r.Get("/jobs", h.handleListJobs)
		r.Get("/jobs/{id}", h.handleGetJob)
		if h.config.Metrics != nil {
			r.Handle("/metrics", h.config.Metrics)
		}
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusNotFound, "not_found", "Unknown endpoint")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		})
	})

	r.Get("/*", h.handleArchive)
	r.Put("/*", h.handleRestore(stowback.ModeReplace))
	r.Post("/*", h.handleRestore(stowback.ModeMerge))

	return r
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Archive(r.Context(), r.URL.Path)
	if err != nil {
		HandleJobError(w, job, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, JobResponse{Success: true, Job: job})
}

func (h *Handler) handleRestore(mode stowback.RestoreMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.service.Restore(r.Context(), r.URL.Path, mode)
		if err != nil {
			HandleJobError(w, job, err)
			return
		}

		_ = WriteJSON(w, http.StatusOK, JobResponse{Success: true, Job: job})
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	query, err := parseJobQuery(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	result, err := h.service.ListJobs(r.Context(), query)
	if err != nil {
		if errors.Is(err, stowback.ErrInvalidInput) {
			WriteError(w, http.StatusBadRequest, "invalid_query", "Invalid cursor")
			return
		}
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_query", "Invalid job id")
		return
	}

	job, err := h.service.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, stowback.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "not_found", "Job not found")
			return
		}
		HandleError(w, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, job)
}

func parseJobQuery(r *http.Request) (stowback.JobQuery, error) {
	q := r.URL.Query()

	query := stowback.JobQuery{
		PathPrefix: q.Get("prefix"),
		Cursor:     q.Get("cursor"),
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return stowback.JobQuery{}, fmt.Errorf("%w: limit must be a positive integer", ErrInvalidQuery)
		}
		query.Limit = limit
	}

	return query, nil
}
