// Package stowry stores archives on a Stowry object server using presigned
// requests signed by stowry-go.
//
// Every archive becomes two objects under /<container>/: the archive itself
// and a small JSON document carrying its metadata, since Stowry keeps no
// user metadata of its own.
package stowry

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	stowryclient "github.com/sagarc03/stowry-go"

	"github.com/sagarc03/stowback"
)

// DefaultExpires is the presigned URL lifetime in seconds.
const DefaultExpires = 900

type Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Container string `mapstructure:"-"`
	// Expires is the presigned URL lifetime in seconds.
	Expires int           `mapstructure:"expires"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Store struct {
	signer     *stowryclient.Client
	httpClient *http.Client
	container  string
	expires    int
}

type sidecar struct {
	Key         string            `json:"key"`
	ContentType string            `json:"content_type"`
	Metadata    map[string]string `json:"metadata"`
}

// serverMetaData is the object description Stowry returns from a PUT.
type serverMetaData struct {
	Path          string `json:"path"`
	ETag          string `json:"etag"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("new stowry store: endpoint cannot be empty")
	}
	if cfg.Container == "" || strings.ContainsAny(cfg.Container, `/\?#~ `) {
		return nil, fmt.Errorf("new stowry store: invalid container %q", cfg.Container)
	}

	expires := cfg.Expires
	if expires <= 0 {
		expires = DefaultExpires
	}

	// Uploads stream whole archives, so only the dial and headers are bounded.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Timeout > 0 {
		transport.ResponseHeaderTimeout = cfg.Timeout
	}

	return &Store{
		signer:     stowryclient.NewClient(strings.TrimSuffix(cfg.Endpoint, "/"), cfg.AccessKey, cfg.SecretKey),
		httpClient: &http.Client{Transport: transport},
		container:  cfg.Container,
		expires:    expires,
	}, nil
}

// EnsureContainer is a no-op: Stowry paths are created on first write.
func (s *Store) EnsureContainer(ctx context.Context) (bool, error) {
	return false, ctx.Err()
}

func (s *Store) Put(ctx context.Context, key string, body io.Reader, contentType string, meta map[string]string) (stowback.PutResult, error) {
	resp, err := s.do(ctx, http.MethodPut, s.objectPath(key), body, contentType)
	if err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: %w", key, err)
	}

	var sm serverMetaData
	if err := json.Unmarshal(resp, &sm); err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: parse response: %w", key, err)
	}

	sc, err := json.Marshal(sidecar{Key: key, ContentType: contentType, Metadata: meta})
	if err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: encode sidecar: %w", key, err)
	}

	if _, err := s.do(ctx, http.MethodPut, s.sidecarPath(key), bytes.NewReader(sc), "application/json"); err != nil {
		return stowback.PutResult{}, fmt.Errorf("put %s: write sidecar: %w", key, err)
	}

	return stowback.PutResult{Size: sm.FileSizeBytes, ETag: sm.ETag}, nil
}

func (s *Store) Get(ctx context.Context, key string) (io.ReadCloser, map[string]string, error) {
	raw, err := s.do(ctx, http.MethodGet, s.sidecarPath(key), nil, "")
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}

	var sc sidecar
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, nil, fmt.Errorf("get %s: decode sidecar: %w", key, err)
	}

	resp, err := s.send(ctx, http.MethodGet, s.objectPath(key), nil, "")
	if err != nil {
		return nil, nil, fmt.Errorf("get %s: %w", key, err)
	}

	return resp.Body, sc.Metadata, nil
}

// do sends a request and returns the fully read response body.
func (s *Store) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	resp, err := s.send(ctx, method, path, body, contentType)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return data, nil
}

// send issues a presigned request. A 404 maps to stowback.ErrNotFound and
// any other non-2xx status is an error; on success the caller owns the body.
func (s *Store) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	var presignURL string
	switch method {
	case http.MethodPut:
		presignURL = s.signer.PresignPut(path, s.expires)
	default:
		presignURL = s.signer.PresignGet(path, s.expires)
	}

	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, presignURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, stowback.ErrNotFound
	}
	return nil, fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
}

func (s *Store) objectPath(key string) string {
	return "/" + s.container + "/" + objectName(key) + ".tar"
}

func (s *Store) sidecarPath(key string) string {
	return "/" + s.container + "/" + objectName(key) + ".meta.json"
}

func objectName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
