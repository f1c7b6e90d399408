package internal_test

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/sagarc03/stowback/database/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCursor_DecodeCursor_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		startedAt time.Time
		id        string
	}{
		{
			name:      "simple uuid",
			startedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			id:        "5f0c4a52-3b7e-4c59-9f77-2a4e1d3c8b10",
		},
		{
			name:      "sub-second precision",
			startedAt: time.Date(2024, 6, 20, 14, 45, 30, 123456789, time.UTC),
			id:        "9d1e7f20-6a3b-4f0e-8c21-7b5d2e9f4a33",
		},
		{
			name:      "nanosecond precision",
			startedAt: time.Date(2024, 12, 31, 23, 59, 59, 999999999, time.UTC),
			id:        "e3b0c442-98fc-4c14-9afb-f4c8996fb924",
		},
		{
			name:      "id with pipe character",
			startedAt: time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC),
			id:        "legacy|id",
		},
		{
			name:      "epoch",
			startedAt: time.Unix(0, 0).UTC(),
			id:        "00000000-0000-0000-0000-000000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded := internal.EncodeCursor(tt.startedAt, tt.id)
			assert.NotEmpty(t, encoded, "encoded cursor should not be empty")

			decoded, err := internal.DecodeCursor(encoded)
			require.NoError(t, err)

			assert.True(t, tt.startedAt.Equal(decoded.StartedAt),
				"startedAt mismatch: expected %v, got %v", tt.startedAt, decoded.StartedAt)
			assert.Equal(t, tt.id, decoded.ID)
		})
	}
}

func TestDecodeCursor_EmptyString(t *testing.T) {
	t.Parallel()

	cursor, err := internal.DecodeCursor("")
	require.NoError(t, err)

	assert.True(t, cursor.StartedAt.IsZero(), "empty cursor should return zero time")
	assert.Empty(t, cursor.ID, "empty cursor should return empty id")
}

func TestDecodeCursor_InvalidBase64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cursor string
	}{
		{
			name:   "not base64",
			cursor: "not-valid-base64!!!",
		},
		{
			name:   "wrong padding",
			cursor: "aGVsbG8===",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := internal.DecodeCursor(tt.cursor)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid encoding")
		})
	}
}

func TestDecodeCursor_InvalidFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		rawData     string
		errContains string
	}{
		{
			name:        "missing pipe separator",
			rawData:     "2024-01-15T10:30:00Z",
			errContains: "invalid format",
		},
		{
			name:        "empty id after pipe",
			rawData:     "2024-01-15T10:30:00Z|",
			errContains: "empty id",
		},
		{
			name:        "invalid timestamp format",
			rawData:     "not-a-timestamp|0b0e1f3c-5a47-4a5e-9a38-6f5b8e0c2d11",
			errContains: "invalid timestamp",
		},
		{
			name:        "wrong timestamp format",
			rawData:     "2024/01/15 10:30:00|0b0e1f3c-5a47-4a5e-9a38-6f5b8e0c2d11",
			errContains: "invalid timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			encoded := base64.URLEncoding.EncodeToString([]byte(tt.rawData))

			_, err := internal.DecodeCursor(encoded)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestEscapeLikePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no special characters",
			input:    "simple/path/file.txt",
			expected: "simple/path/file.txt",
		},
		{
			name:     "percent sign",
			input:    "100%complete",
			expected: `100\%complete`,
		},
		{
			name:     "underscore",
			input:    "file_name.txt",
			expected: `file\_name.txt`,
		},
		{
			name:     "backslash",
			input:    `path\to\file`,
			expected: `path\\to\\file`,
		},
		{
			name:     "all special characters",
			input:    `50%_done\today`,
			expected: `50\%\_done\\today`,
		},
		{
			name:     "multiple consecutive special chars",
			input:    "%%__\\\\",
			expected: `\%\%\_\_\\\\`,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only special characters",
			input:    `%_\`,
			expected: `\%\_\\`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := internal.EscapeLikePattern(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEncodeCursor_NormalisesToUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2024, 2, 1, 9, 0, 0, 0, loc)

	decoded, err := internal.DecodeCursor(internal.EncodeCursor(at, "id"))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, decoded.StartedAt.Location())
	assert.True(t, at.Equal(decoded.StartedAt))
}

func TestPageLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50, internal.PageLimit(0, 50, 1000))
	assert.Equal(t, 50, internal.PageLimit(-3, 50, 1000))
	assert.Equal(t, 7, internal.PageLimit(7, 50, 1000))
	assert.Equal(t, 1000, internal.PageLimit(5000, 50, 1000))
}
