// Package storage builds the configured ObjectStore backend.
//
// Three backends are available:
//
//   - filesystem: a local directory, one file plus a JSON sidecar per archive
//   - s3: any S3-compatible service through minio-go
//   - stowry: a Stowry server through presigned requests
//
// Example:
//
//	store, cleanup, err := storage.Connect(ctx, storage.Config{
//	    Backend:   "s3",
//	    Container: "backups",
//	    S3:        s3.Config{Endpoint: "localhost:9000", AccessKey: ak, SecretKey: sk},
//	})
//	if err != nil {
//	    return err
//	}
//	defer cleanup()
package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/sagarc03/stowback"
	"github.com/sagarc03/stowback/storage/filesystem"
	"github.com/sagarc03/stowback/storage/s3"
	"github.com/sagarc03/stowback/storage/stowry"
)

// Config holds the configuration for connecting to an object store.
type Config struct {
	// Backend is one of "filesystem", "s3" or "stowry".
	Backend string `mapstructure:"backend"`
	// Container names the bucket (s3), directory (filesystem) or path prefix (stowry).
	Container string `mapstructure:"container"`

	// Path is the base directory of the filesystem backend.
	Path   string        `mapstructure:"path"`
	S3     s3.Config     `mapstructure:"s3"`
	Stowry stowry.Config `mapstructure:"stowry"`
}

// Connect returns the ObjectStore selected by cfg.Backend.
// The returned cleanup function releases any resources the backend holds.
func Connect(ctx context.Context, cfg Config) (stowback.ObjectStore, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("connect storage: %w", err)
	}

	switch cfg.Backend {
	case "filesystem":
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, nil, fmt.Errorf("connect filesystem storage: %w", err)
		}
		root, err := os.OpenRoot(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("connect filesystem storage: %w", err)
		}
		cleanup := func() {
			_ = root.Close()
		}
		return filesystem.NewStore(root, cfg.Container), cleanup, nil

	case "s3":
		s3cfg := cfg.S3
		s3cfg.Bucket = cfg.Container
		store, err := s3.New(s3cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect s3 storage: %w", err)
		}
		return store, func() {}, nil

	case "stowry":
		stcfg := cfg.Stowry
		stcfg.Container = cfg.Container
		store, err := stowry.New(stcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect stowry storage: %w", err)
		}
		return store, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
