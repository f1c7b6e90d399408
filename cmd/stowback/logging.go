package main

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/sagarc03/stowback/config"
)

// setupLogging installs the process logger and routes the standard library
// logger (net/http server errors) through it.
func setupLogging(cfg *config.Config) {
	slog.SetDefault(newLogger(os.Stderr, cfg.Log, cfg.IsProd()))

	log.SetFlags(0)
	log.SetOutput(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError).Writer())
}

// newLogger builds a logger writing to w. Production defaults to JSON at info
// level, development to colored text at debug level.
func newLogger(w io.Writer, lc config.LogConfig, prod bool) *slog.Logger {
	level := slog.LevelDebug
	if prod {
		level = slog.LevelInfo
	}
	if lc.Level != "" {
		level = parseLevel(lc.Level)
	}

	format := lc.Format
	if format == "" {
		format = "text"
		if prod {
			format = "json"
		}
	}

	if format == "json" {
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("ts", a.Value.Time().UTC().Format(time.RFC3339Nano))
				}
				return a
			},
		})
		return slog.New(h).With("service", "stowback")
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  !prod,
		TimeFormat: "15:04:05.000",
		NoColor:    !isTerminal(w),
	}))
}

// isTerminal reports whether w is a character device.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
