package stowback_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowback"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  stowback.Target
	}{
		{"directory intent", "/a/b/", stowback.Target{SourcePath: "/a/b", ObjectKey: "a/b", DirectoryIntent: true}},
		{"file", "/a/b", stowback.Target{SourcePath: "/a/b", ObjectKey: "a/b"}},
		{"single segment", "/etc", stowback.Target{SourcePath: "/etc", ObjectKey: "etc"}},
		{"duplicate slashes", "//var//lib//data/", stowback.Target{SourcePath: "/var/lib/data", ObjectKey: "var/lib/data", DirectoryIntent: true}},
		{"dot segments", "/srv/./app/../www", stowback.Target{SourcePath: "/srv/www", ObjectKey: "srv/www"}},
		{"dotdot cannot climb above root", "/../../etc/hosts", stowback.Target{SourcePath: "/etc/hosts", ObjectKey: "etc/hosts"}},
		{"spaces and unicode", "/home/zoë/My Documents/", stowback.Target{SourcePath: "/home/zoë/My Documents", ObjectKey: "home/zoë/My Documents", DirectoryIntent: true}},
		{"no percent encoding", "/tmp/a%20b", stowback.Target{SourcePath: "/tmp/a%20b", ObjectKey: "tmp/a%20b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stowback.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"relative", "a/b"},
		{"root", "/"},
		{"cleans to root", "/a/.."},
		{"double root", "//"},
		{"nul byte", "/a\x00b"},
		{"newline", "/a\nb"},
		{"delete char", "/a\x7fb"},
		{"invalid utf8", "/a\xffb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stowback.Resolve(tt.input)
			assert.ErrorIs(t, err, stowback.ErrInvalidInput)
		})
	}
}
