package stowback

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// Target is a request path resolved to a filesystem location and its object key.
type Target struct {
	SourcePath      string
	ObjectKey       string
	DirectoryIntent bool
}

// Resolve maps a request path onto a canonical filesystem path and object key.
//
// A trailing slash on the request marks directory intent. The resolved
// SourcePath is cleaned and never ends with a slash; the ObjectKey is the
// SourcePath without its leading slash. Relative paths, paths containing NUL
// or control characters, invalid UTF-8 and the filesystem root are rejected
// with ErrInvalidInput.
func Resolve(requestPath string) (Target, error) {
	if !isValidRequestPath(requestPath) {
		return Target{}, fmt.Errorf("resolve %q: %w", requestPath, ErrInvalidInput)
	}

	cleaned := path.Clean(requestPath)
	if cleaned == "/" {
		return Target{}, fmt.Errorf("resolve %q: %w: root path cannot be archived", requestPath, ErrInvalidInput)
	}

	return Target{
		SourcePath:      cleaned,
		ObjectKey:       strings.TrimPrefix(cleaned, "/"),
		DirectoryIntent: strings.HasSuffix(requestPath, "/"),
	}, nil
}

func isValidRequestPath(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}

	return true
}
