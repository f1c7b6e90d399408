package stowback

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback/archive"
)

// ObjectStore defines the interface for the object store archives are kept in.
// Implementations exist for the local filesystem, S3-compatible services and
// Stowry servers.
//
// All methods accept a context for cancellation and timeout control.
type ObjectStore interface {
	// EnsureContainer makes sure the bucket or directory that holds archives
	// exists, creating it when it does not.
	//
	// Returns:
	//   - bool: true if the container was created by this call
	//   - error: Any storage error. A container that already exists and is
	//     owned by the caller is not an error.
	EnsureContainer(ctx context.Context) (bool, error)

	// Put stores body under key, replacing any previous object.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - key: The object key, never empty
	//   - body: Archive bytes; read until EOF or error
	//   - contentType: MIME type of the archive
	//   - meta: Tags stored alongside the object and returned by Get
	//
	// Returns:
	//   - PutResult: Bytes stored and the store's ETag
	//   - error: Any storage or I/O error, including errors reading body
	Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) (PutResult, error)

	// Get opens the object stored under key.
	//
	// Returns:
	//   - io.ReadCloser: Object content; the caller must close it
	//   - map[string]string: Tags stored by Put. Key case may differ.
	//   - error: ErrNotFound if key does not exist, or other storage errors
	Get(ctx context.Context, key string) (io.ReadCloser, map[string]string, error)
}

// JobRepo persists finished jobs.
// Implementations must handle concurrent access safely.
type JobRepo interface {
	// Insert stores a finished job record.
	Insert(ctx context.Context, job JobRecord) error

	// Get retrieves a job by its ID.
	//
	// Returns:
	//   - JobRecord: The stored record if found
	//   - error: ErrNotFound if id doesn't exist, or other database errors
	Get(ctx context.Context, id uuid.UUID) (JobRecord, error)

	// List retrieves jobs newest first.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - q: JobQuery with optional source path prefix filter, limit, and cursor for pagination
	//
	// Returns:
	//   - JobList: Matching records and cursor for next page
	//   - error: Any database error
	List(ctx context.Context, q JobQuery) (JobList, error)
}

// JobObserver is notified once for every finished job, successful or not.
type JobObserver interface {
	JobFinished(job JobRecord)
}

type Service struct {
	store    ObjectStore
	compress bool
	jobs     JobRepo
	observer JobObserver
	locks    *PathLocker
}

func NewService(store ObjectStore, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: object store is required")
	}

	return &Service{
		store:    store,
		compress: cfg.Compress,
		jobs:     cfg.Jobs,
		observer: cfg.Observer,
		locks:    NewPathLocker(),
	}, nil
}

// Archive packs the file or directory named by requestPath and uploads it to
// the object store under the path's object key.
//
// The pipeline is:
//  1. Resolve the request path
//  2. Lock the source path for the duration of the job
//  3. Stat the source; the filesystem decides whether it is a directory
//  4. Ensure the container exists
//  5. Stream tar (and gzip when enabled) straight into the store
//
// Once started a job runs to completion even if ctx is cancelled; a context
// that is already done is rejected without doing any work.
//
// Error types returned:
//   - ErrInvalidInput: requestPath is relative, malformed, or the root
//   - ErrSourceNotFound: Nothing exists at the source path
//   - ErrUnsupportedPathType: The source is neither a regular file nor a directory
//   - ErrContainerSetupFailed: The container could not be created
//   - ErrPackFailed: The source tree could not be read mid-stream
//   - ErrUploadFailed: The store rejected or aborted the upload
//
// The returned JobRecord is filled in whether or not the job succeeded.
func (s *Service) Archive(ctx context.Context, requestPath string) (JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return JobRecord{}, fmt.Errorf("archive: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	job := newJob(KindArchive, "", requestPath)

	target, err := Resolve(requestPath)
	if err != nil {
		return s.finish(ctx, job, fmt.Errorf("archive: %w", err))
	}
	job.SourcePath = target.SourcePath
	job.ObjectKey = target.ObjectKey

	unlock := s.locks.Lock(target.SourcePath)
	defer unlock()

	slog.Info("archive started", "job", job.ID, "path", target.SourcePath, "key", target.ObjectKey)

	err = s.archive(ctx, target, &job)
	return s.finish(ctx, job, err)
}

func (s *Service) archive(ctx context.Context, t Target, job *JobRecord) error {
	isDir, err := statSource(t.SourcePath)
	if err != nil {
		return err
	}

	if isDir != t.DirectoryIntent {
		slog.Warn("request path type does not match source",
			"path", t.SourcePath, "directory_intent", t.DirectoryIntent, "is_directory", isDir)
	}

	meta := Metadata{IsDirectory: isDir, IsCompressed: s.compress}
	job.IsDirectory = meta.IsDirectory
	job.IsCompressed = meta.IsCompressed

	created, err := s.store.EnsureContainer(ctx)
	if err != nil {
		return fmt.Errorf("archive %s: %w: %w", t.SourcePath, ErrContainerSetupFailed, err)
	}
	if created {
		slog.Info("created storage container")
	}

	packed := archive.Pack(ctx, t.SourcePath, isDir)
	body := packed
	if s.compress {
		body = archive.Compress(packed)
	}

	res, putErr := s.store.Put(ctx, t.ObjectKey, body, meta.ContentType(), meta.Encode())
	_ = body.Close()

	// Producer failures surface to the store as read errors, so they are
	// checked first to name the real cause.
	if err := packed.Err(); err != nil {
		return fmt.Errorf("archive %s: %w: %w", t.SourcePath, ErrPackFailed, err)
	}
	if err := body.Err(); err != nil {
		return fmt.Errorf("archive %s: %w: %w", t.SourcePath, ErrPackFailed, err)
	}
	if putErr != nil {
		return fmt.Errorf("archive %s: %w: %w", t.SourcePath, ErrUploadFailed, putErr)
	}

	job.Bytes = res.Size
	job.ETag = res.ETag
	return nil
}

// statSource reports whether p is a directory. Symlinks are followed.
func statSource(p string) (bool, error) {
	info, err := os.Lstat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat source %s: %w", p, ErrSourceNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w: %w", p, ErrPackFailed, err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		info, err = os.Stat(p)
		if err != nil {
			return false, fmt.Errorf("stat source %s: %w: dangling symlink: %w", p, ErrUnsupportedPathType, err)
		}
	}

	switch {
	case info.Mode().IsRegular():
		return false, nil
	case info.IsDir():
		return true, nil
	default:
		return false, fmt.Errorf("stat source %s: %w: %s", p, ErrUnsupportedPathType, info.Mode().Type())
	}
}

// Restore downloads the archive stored for requestPath and extracts it back
// onto the filesystem.
//
// The stored metadata decides the layout. A single-file archive is written
// into the parent of the source path and mode has no effect. A directory
// archive is extracted into the source path itself, which is created if
// missing; ModeReplace empties it first, ModeMerge leaves existing entries
// the archive does not mention untouched.
//
// Nothing on the filesystem changes before the download has been opened and
// its metadata decoded.
//
// Error types returned:
//   - ErrInvalidInput: requestPath is malformed or mode is unknown
//   - ErrObjectNotFound: No archive is stored for the path
//   - ErrDownloadFailed: The store could not serve the archive
//   - ErrInvalidMetadata: The object lacks usable archive metadata
//   - ErrClearFailed: A replace restore could not empty the directory
//   - ErrCompressionMismatch, ErrDecompressionFailed, ErrArchiveCorrupt: Bad archive bytes
//   - ErrExtractFailed: Writing to the filesystem failed
func (s *Service) Restore(ctx context.Context, requestPath string, mode RestoreMode) (JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return JobRecord{}, fmt.Errorf("restore: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	job := newJob(KindRestore, mode, requestPath)

	if !mode.IsValid() {
		return s.finish(ctx, job, fmt.Errorf("restore: %w: invalid mode %q", ErrInvalidInput, mode))
	}

	target, err := Resolve(requestPath)
	if err != nil {
		return s.finish(ctx, job, fmt.Errorf("restore: %w", err))
	}
	job.SourcePath = target.SourcePath
	job.ObjectKey = target.ObjectKey

	unlock := s.locks.Lock(target.SourcePath)
	defer unlock()

	slog.Info("restore started", "job", job.ID, "path", target.SourcePath, "key", target.ObjectKey, "mode", mode)

	err = s.restore(ctx, target, mode, &job)
	return s.finish(ctx, job, err)
}

func (s *Service) restore(ctx context.Context, t Target, mode RestoreMode, job *JobRecord) error {
	body, tags, err := s.store.Get(ctx, t.ObjectKey)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("restore %s: %w: %w", t.ObjectKey, ErrObjectNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("restore %s: %w: %w", t.ObjectKey, ErrDownloadFailed, err)
	}
	defer func() { _ = body.Close() }()

	meta, err := DecodeMetadata(tags)
	if err != nil {
		return fmt.Errorf("restore %s: %w", t.ObjectKey, err)
	}
	job.IsDirectory = meta.IsDirectory
	job.IsCompressed = meta.IsCompressed

	if meta.IsDirectory != t.DirectoryIntent {
		slog.Warn("request path type does not match stored archive",
			"path", t.SourcePath, "directory_intent", t.DirectoryIntent, "is_directory", meta.IsDirectory)
	}

	src := &countingReader{r: body}
	defer func() { job.Bytes = src.n }()

	opts := archive.UnpackOptions{Compressed: meta.IsCompressed}
	targetDir := t.SourcePath

	if meta.IsDirectory {
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("restore %s: %w: %w", t.SourcePath, ErrExtractFailed, err)
		}
		if mode == ModeReplace {
			if err := ClearDirectory(targetDir); err != nil {
				return fmt.Errorf("restore %s: %w", t.SourcePath, err)
			}
		}
	} else {
		targetDir = filepath.Dir(t.SourcePath)
		opts.Only = filepath.Base(t.SourcePath)
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("restore %s: %w: %w", t.SourcePath, ErrExtractFailed, err)
		}
	}

	if err := archive.Unpack(ctx, src, targetDir, opts); err != nil {
		if src.err != nil {
			return fmt.Errorf("restore %s: %w: %w", t.SourcePath, ErrDownloadFailed, src.err)
		}
		return fmt.Errorf("restore %s: %w", t.SourcePath, err)
	}

	return nil
}

// ListJobs returns recorded jobs, newest first.
func (s *Service) ListJobs(ctx context.Context, q JobQuery) (JobList, error) {
	if err := ctx.Err(); err != nil {
		return JobList{}, fmt.Errorf("list jobs: %w", err)
	}

	if s.jobs == nil {
		return JobList{}, fmt.Errorf("list jobs: %w", ErrJobsDisabled)
	}

	result, err := s.jobs.List(ctx, q)
	if err != nil {
		return JobList{}, fmt.Errorf("list jobs: %w", err)
	}

	return result, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return JobRecord{}, fmt.Errorf("get job: %w", err)
	}

	if s.jobs == nil {
		return JobRecord{}, fmt.Errorf("get job: %w", ErrJobsDisabled)
	}

	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return JobRecord{}, fmt.Errorf("get job %s: %w", id, err)
	}

	return job, nil
}

func newJob(kind JobKind, mode RestoreMode, requestPath string) JobRecord {
	return JobRecord{
		ID:         uuid.New(),
		Kind:       kind,
		Mode:       mode,
		SourcePath: requestPath,
		StartedAt:  time.Now().UTC(),
	}
}

// finish stamps the outcome on job and hands it to the ledger and observer.
// A ledger failure is logged and never changes the job's outcome.
func (s *Service) finish(ctx context.Context, job JobRecord, jobErr error) (JobRecord, error) {
	job.FinishedAt = time.Now().UTC()

	if jobErr != nil {
		job.Status = StatusFailed
		job.ErrorKind = ErrorKind(jobErr)
		job.ErrorMessage = jobErr.Error()
		slog.Warn(string(job.Kind)+" failed", "job", job.ID, "path", job.SourcePath,
			"error_kind", job.ErrorKind, "error", jobErr, "duration", job.Duration())
	} else {
		job.Status = StatusSucceeded
		slog.Info(string(job.Kind)+" finished", "job", job.ID, "path", job.SourcePath,
			"bytes", job.Bytes, "compressed", job.IsCompressed, "duration", job.Duration())
	}

	if s.jobs != nil {
		if err := s.jobs.Insert(ctx, job); err != nil {
			slog.Error("record job", "job", job.ID, "error", err)
		}
	}

	if s.observer != nil {
		s.observer.JobFinished(job)
	}

	return job, jobErr
}

// countingReader counts bytes read and remembers the first read error, so a
// broken download is not reported as a corrupt archive.
type countingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if err != nil && err != io.EOF && c.err == nil {
		c.err = err
	}
	return n, err
}
