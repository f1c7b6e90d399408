// Package s3 stores archives in an S3-compatible bucket using minio-go.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sagarc03/stowback"
)

// DefaultPartSize bounds the memory a streaming upload buffers per part.
const DefaultPartSize = 16 << 20

type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"-"`
	PartSize  uint64 `mapstructure:"part_size"`
}

// Store is an ObjectStore backed by one bucket.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	partSize uint64
}

// New connects a minio client from cfg.
func New(cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("new s3 store: bucket cannot be empty")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new s3 store: %w", err)
	}

	return NewStore(client, cfg.Bucket, cfg.Region, cfg.PartSize), nil
}

// NewStore wraps an existing client. A zero partSize selects DefaultPartSize.
func NewStore(client *minio.Client, bucket, region string, partSize uint64) *Store {
	if partSize == 0 {
		partSize = DefaultPartSize
	}
	return &Store{client: client, bucket: bucket, region: region, partSize: partSize}
}

// EnsureContainer creates the bucket unless it already exists. A bucket
// already owned by the caller counts as existing.
func (s *Store) EnsureContainer(ctx context.Context) (bool, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return false, nil
	}

	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil {
		switch minio.ToErrorResponse(err).Code {
		case "BucketAlreadyOwnedByYou":
			return false, nil
		default:
			return false, fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	return true, nil
}

// Put streams body into the bucket. The size is unknown up front, so the
// upload is multipart with parts of at most partSize bytes.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) (stowback.PutResult, error) {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, -1, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: meta,
		PartSize:     s.partSize,
	})
	if err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: %w", key, err)
	}

	return stowback.PutResult{Size: info.Size, ETag: info.ETag}, nil
}

// Get opens key for reading. Returns stowback.ErrNotFound if the key does not exist.
//
// The returned metadata holds the object's user metadata with whatever key
// case the server reports.
func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, map[string]string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, nil, s.mapError(key, err)
	}

	// GetObject is lazy; Stat issues the request and surfaces missing keys.
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, nil, s.mapError(key, err)
	}

	return obj, stat.UserMetadata, nil
}

func (s *Store) mapError(key string, err error) error {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("get %s: %w", key, stowback.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", key, err)
}
