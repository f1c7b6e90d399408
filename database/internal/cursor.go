// Package internal holds helpers shared by the SQL job ledger backends.
package internal

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cursor marks the last job of a page. Jobs are listed newest first, so the
// next page starts strictly before (StartedAt, ID).
type Cursor struct {
	StartedAt time.Time
	ID        string
}

// EncodeCursor encodes cursor data to a base64 string for pagination.
func EncodeCursor(startedAt time.Time, id string) string {
	data := startedAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(data))
}

// DecodeCursor decodes a pagination cursor string back to cursor data.
func DecodeCursor(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid encoding: %w", err)
	}

	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, errors.New("decode cursor: invalid format")
	}

	if parts[1] == "" {
		return Cursor{}, errors.New("decode cursor: empty id")
	}

	startedAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: invalid timestamp: %w", err)
	}

	return Cursor{StartedAt: startedAt, ID: parts[1]}, nil
}

// EscapeLikePattern escapes special LIKE characters (%, _, \) to prevent SQL injection.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// PageLimit clamps a requested page size to [1, max], using def for zero or negative values.
func PageLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}

// Page size bounds for job listings.
const (
	DefaultPageLimit = 50
	MaxPageLimit     = 1000
)
