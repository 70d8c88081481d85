package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/html2md"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds the run logger and tags it with a per-run id.
// Without a log file, records at the configured level go to stderr. With
// one, the file receives the configured level and rotates by size, while
// stderr only sees warnings and errors.
func newLogger(cfg html2md.Config, stderr io.Writer) (*slog.Logger, func() error, error) {
	level := logLevel(cfg.LogLevel)
	if cfg.LogFile == "" {
		handler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})
		return slog.New(handler).With("run", uuid.NewString()), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, err
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    megabytes(cfg.LogMaxBytes),
		MaxBackups: cfg.LogBackups,
	}

	handler := teeHandler{
		slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}),
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: max(level, slog.LevelWarn)}),
	}
	return slog.New(handler).With("run", uuid.NewString()), file.Close, nil
}

// megabytes converts a byte limit to lumberjack's megabyte unit, rounding up.
func megabytes(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + 1<<20 - 1) >> 20
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// teeHandler sends each record to every handler enabled for its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
