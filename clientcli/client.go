package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
)

// DefaultTimeout is the request timeout when neither the profile nor the
// caller sets one. Archive and restore requests block until the job finishes.
const DefaultTimeout = 30 * time.Minute

// reservedPrefix is the server's namespace for non-archive routes.
const reservedPrefix = "/-"

// Client performs archive and restore requests against a stowback server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     &Config{Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"), Timeout: cfg.Timeout},
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Endpoint returns the normalized server URL.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}

// Archive asks the server to archive each path. Paths are server-side
// absolute paths; a trailing slash marks a directory. Requests run in order
// and a failure does not stop the remaining paths.
func (c *Client) Archive(ctx context.Context, paths []string) ([]JobResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("archive: %w", ErrNoPaths)
	}

	results := make([]JobResult, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.runJob(ctx, http.MethodGet, p))
	}
	return results, nil
}

// Restore asks the server to restore each path from its stored archive.
func (c *Client) Restore(ctx context.Context, paths []string, opts RestoreOptions) ([]JobResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("restore: %w", ErrNoPaths)
	}

	method := http.MethodPost
	if opts.Mode() == stowback.ModeReplace {
		method = http.MethodPut
	}

	results := make([]JobResult, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, c.runJob(ctx, method, p))
	}
	return results, nil
}

// HasFailures returns true if any job in results failed.
func HasFailures(results []JobResult) bool {
	for i := range results {
		if results[i].Failed() {
			return true
		}
	}
	return false
}

func (c *Client) runJob(ctx context.Context, method, path string) JobResult {
	result := JobResult{Path: path}

	if err := validatePath(path); err != nil {
		result.Err = err
		return result
	}

	u := c.config.Endpoint + (&url.URL{Path: path}).EscapedPath()
	req, err := http.NewRequestWithContext(ctx, method, u, http.NoBody)
	if err != nil {
		result.Err = fmt.Errorf("create request: %w", err)
		return result
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("do request: %w", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = fmt.Errorf("read response: %w", err)
		return result
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := parseServerError(resp.StatusCode, body)
		if apiErr.Job != nil {
			result.Job = *apiErr.Job
		}
		result.Err = apiErr
		return result
	}

	var jr jobResponse
	if err := json.Unmarshal(body, &jr); err != nil || !jr.Success {
		result.Err = fmt.Errorf("%w: %s", ErrUnexpectedResponse, truncate(string(body), 200))
		return result
	}
	result.Job = jr.Job
	return result
}

func validatePath(p string) error {
	switch {
	case p == "":
		return ErrEmptyPath
	case !strings.HasPrefix(p, "/"):
		return fmt.Errorf("%w: %s", ErrRelativePath, p)
	case p == reservedPrefix || strings.HasPrefix(p, reservedPrefix+"/"):
		return fmt.Errorf("%w: %s", ErrReservedPath, p)
	}
	return nil
}

// ListJobs lists recorded jobs, newest first.
// If opts.All is true, paginates through all results.
func (c *Client) ListJobs(ctx context.Context, opts ListJobsOptions) (*JobList, error) {
	if opts.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	if opts.All {
		return c.listAll(ctx, opts)
	}
	return c.listPage(ctx, opts)
}

func (c *Client) listPage(ctx context.Context, opts ListJobsOptions) (*JobList, error) {
	query := url.Values{}
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	u := c.config.Endpoint + reservedPrefix + "/jobs"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var list JobList
	if err := c.getJSON(ctx, u, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) listAll(ctx context.Context, opts ListJobsOptions) (*JobList, error) {
	var all []stowback.JobRecord
	cursor := opts.Cursor

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.listPage(ctx, ListJobsOptions{
			Prefix: opts.Prefix,
			Limit:  opts.Limit,
			Cursor: cursor,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, page.Items...)

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return &JobList{Items: all}, nil
}

// GetJob fetches a single job record by id.
func (c *Client) GetJob(ctx context.Context, id string) (*stowback.JobRecord, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJobID, id)
	}

	var job stowback.JobRecord
	if err := c.getJSON(ctx, c.config.Endpoint+reservedPrefix+"/jobs/"+parsed.String(), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, c.config.Endpoint+reservedPrefix+"/healthz", &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("%w: status %q", ErrUnexpectedResponse, out.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return parseServerError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	return nil
}

// parseServerError builds an APIError from a non-200 response. Bodies that are
// not the server's JSON error shape are kept verbatim.
func parseServerError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		apiErr.Kind = er.Error
		apiErr.Message = er.Message
		apiErr.Job = er.Job
	}
	return apiErr
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	// Kind is the server's error code, e.g. "object_not_found".
	Kind    string
	Message string
	Body    string
	// Job is the failed job's record, when the server assigned one.
	Job *stowback.JobRecord
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Kind + ": " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Unwrap exposes the stowback sentinel named by Kind, so callers can test
// for e.g. stowback.ErrObjectNotFound with errors.Is.
func (e *APIError) Unwrap() error {
	return stowback.ErrorFromKind(e.Kind)
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the source path or stored archive does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned when the server rejects the path or query (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrNotImplemented is returned by job queries when the server runs
	// without a job ledger (501).
	ErrNotImplemented = &APIError{StatusCode: http.StatusNotImplemented}
)
