// Package filesystem provides a local directory object store for stowback.
// Objects live under a container directory as <sha256(key)>.tar with a JSON
// sidecar holding the key, content type and metadata. Writes are atomic
// using temp files and rename.
package filesystem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
)

// Store provides object storage on a local directory tree.
type Store struct {
	root      *os.Root
	container string
}

// sidecar is the JSON document stored next to every object.
type sidecar struct {
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata"`
	ETag        string            `json:"etag"`
	Size        int64             `json:"size"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewStore creates a Store keeping objects in the container directory below root.
// The root provides sandboxed file operations preventing path traversal.
func NewStore(root *os.Root, container string) *Store {
	return &Store{root: root, container: container}
}

// EnsureContainer creates the container directory if it does not exist.
func (s *Store) EnsureContainer(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := s.root.Mkdir(s.container, 0o755)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return false, fmt.Errorf("create container %s: %w", s.container, err)
	}

	info, err := s.root.Stat(s.container)
	if err != nil {
		return false, fmt.Errorf("stat container %s: %w", s.container, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("container %s exists and is not a directory", s.container)
	}

	return false, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Put atomically writes body and then its sidecar. The returned ETag is the
// hex SHA256 of the stored bytes. The operation respects context cancellation.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) (stowback.PutResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return stowback.PutResult{}, ctxErr
	}

	h := sha256.New()
	size, err := s.writeAtomic(s.objectPath(key), func(w io.Writer) error {
		_, err := io.Copy(io.MultiWriter(h, w), &ctxReader{ctx: ctx, r: body})
		return err
	})
	if err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: %w", key, err)
	}

	sc := sidecar{
		Key:         key,
		ContentType: contentType,
		Metadata:    meta,
		ETag:        hex.EncodeToString(h.Sum(nil)),
		Size:        size,
		UpdatedAt:   time.Now().UTC(),
	}

	_, err = s.writeAtomic(s.sidecarPath(key), func(w io.Writer) error {
		return json.NewEncoder(w).Encode(sc)
	})
	if err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: write sidecar: %w", key, err)
	}

	return stowback.PutResult{Size: size, ETag: sc.ETag}, nil
}

// Get opens the object stored under key. Returns stowback.ErrNotFound if
// either the object or its sidecar is missing.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	raw, err := s.root.ReadFile(s.sidecarPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, stowback.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get %s: read sidecar: %w", key, err)
	}

	var sc sidecar
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, nil, fmt.Errorf("get %s: decode sidecar: %w", key, err)
	}

	f, err := s.root.Open(s.objectPath(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, stowback.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}

	return f, sc.Metadata, nil
}

func (s *Store) writeAtomic(dest string, write func(w io.Writer) error) (int64, error) {
	tmpFile := path.Join(s.container, tmpFileName())
	t, createErr := s.root.Create(tmpFile)
	if createErr != nil {
		return 0, fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	cw := &countingWriter{w: t}
	if err := write(cw); err != nil {
		return 0, fmt.Errorf("could not write contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, dest); renameErr != nil {
		return 0, fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func (s *Store) objectPath(key string) string {
	return path.Join(s.container, objectName(key)+".tar")
}

func (s *Store) sidecarPath(key string) string {
	return path.Join(s.container, objectName(key)+".json")
}

// objectName flattens a key into a single file name, so keys that are
// prefixes of one another never collide as file and directory.
func objectName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
