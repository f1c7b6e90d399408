package stowback

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	KindArchive JobKind = "archive"
	KindRestore JobKind = "restore"
)

// RestoreMode selects how a directory restore treats existing content.
type RestoreMode string

const (
	// ModeMerge extracts over the existing tree and keeps entries the archive
	// does not mention.
	ModeMerge RestoreMode = "merge"
	// ModeReplace empties the target directory before extracting.
	ModeReplace RestoreMode = "replace"
)

func (m RestoreMode) IsValid() bool {
	switch m {
	case ModeMerge, ModeReplace:
		return true
	default:
		return false
	}
}

func ParseRestoreMode(s string) (RestoreMode, error) {
	mode := RestoreMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid restore mode: %s (valid modes: merge, replace)", s)
	}
	return mode, nil
}

type JobStatus string

const (
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
)

// JobRecord describes one archive or restore request from start to finish.
type JobRecord struct {
	ID           uuid.UUID   `json:"id"`
	Kind         JobKind     `json:"kind"`
	Mode         RestoreMode `json:"mode,omitempty"`
	SourcePath   string      `json:"source_path"`
	ObjectKey    string      `json:"object_key"`
	IsDirectory  bool        `json:"is_directory"`
	IsCompressed bool        `json:"is_compressed"`
	Status       JobStatus   `json:"status"`
	ErrorKind    string      `json:"error_kind,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Bytes        int64       `json:"bytes"`
	ETag         string      `json:"etag,omitempty"`
	StartedAt    time.Time   `json:"started_at"`
	FinishedAt   time.Time   `json:"finished_at"`
}

// Duration is the wall time the job took.
func (j JobRecord) Duration() time.Duration {
	return j.FinishedAt.Sub(j.StartedAt)
}

// PutResult is what a store reports for a finished upload.
type PutResult struct {
	Size int64
	// ETag is the store's content tag. Backends without one leave it empty.
	ETag string
}

type JobQuery struct {
	PathPrefix string
	Limit      int
	Cursor     string
}

type JobList struct {
	Items      []JobRecord `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ServiceConfig holds the settings a Service is built with. It is copied on
// construction and never changes afterwards.
type ServiceConfig struct {
	// Compress gzip-compresses archives before upload.
	Compress bool
	// Jobs, when set, receives a record of every finished job.
	Jobs JobRepo
	// Observer, when set, is notified of every finished job.
	Observer JobObserver
}

// Tables holds configurable table names for the job ledger.
// This allows multi-tenant deployments to use different table names.
type Tables struct {
	Jobs string `mapstructure:"jobs"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Jobs == "" {
		return errors.New("validate tables: jobs table name cannot be empty")
	}

	if !IsValidTableName(t.Jobs) {
		return fmt.Errorf("validate tables: invalid jobs table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Jobs)
	}

	return nil
}
