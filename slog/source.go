package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/html2md"
)

// Ensure LoggingSource implements html2md.FileSource.
var _ html2md.FileSource = (*LoggingSource)(nil)

// LoggingSource wraps a FileSource with logging.
type LoggingSource struct {
	next   html2md.FileSource
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next html2md.FileSource, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// Discover delegates to the wrapped source and logs the operation.
func (s *LoggingSource) Discover(ctx context.Context, dir string) (files []*html2md.InputFile, err error) {
	defer func(begin time.Time) {
		s.logger.Info("discovery",
			"dir", dir,
			"count", len(files),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Discover(ctx, dir)
}

// Ensure LoggingStore implements html2md.DocumentStore.
var _ html2md.DocumentStore = (*LoggingStore)(nil)

// LoggingStore wraps a DocumentStore with logging.
type LoggingStore struct {
	next   html2md.DocumentStore
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next html2md.DocumentStore, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs the operation.
func (s *LoggingStore) Save(ctx context.Context, content string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("save",
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, content)
}

// Commit delegates to the wrapped store and logs the outcome.
func (s *LoggingStore) Commit() error {
	err := s.next.Commit()
	s.logger.Debug("commit", "err", err)
	return err
}

// Abort delegates to the wrapped store and logs the outcome.
func (s *LoggingStore) Abort() error {
	err := s.next.Abort()
	s.logger.Debug("abort", "err", err)
	return err
}
