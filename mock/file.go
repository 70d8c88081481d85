package mock

import (
	"context"

	"github.com/fwojciec/html2md"
)

var _ html2md.FileSource = (*FileSource)(nil)

// FileSource is a mock implementation of html2md.FileSource.
type FileSource struct {
	DiscoverFn func(ctx context.Context, dir string) ([]*html2md.InputFile, error)
}

func (s *FileSource) Discover(ctx context.Context, dir string) ([]*html2md.InputFile, error) {
	return s.DiscoverFn(ctx, dir)
}

var _ html2md.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of html2md.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, content string) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, content string) error {
	return s.SaveFn(ctx, content)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}

var _ html2md.Limiter = (*Limiter)(nil)

// Limiter is a mock implementation of html2md.Limiter.
type Limiter struct {
	AcquireFn func(ctx context.Context) error
}

func (l *Limiter) Acquire(ctx context.Context) error {
	return l.AcquireFn(ctx)
}
