package html2md

import (
	"context"
	"path/filepath"
	"time"
)

// InputFile is an HTML document selected for conversion.
type InputFile struct {
	Path    string
	ModTime time.Time

	// Index is the chronological rank assigned at discovery time.
	// It is the sole ordering key for output assembly.
	Index int
}

// Name returns the base name of the file.
func (f *InputFile) Name() string {
	return filepath.Base(f.Path)
}

// FileSource discovers the input files of a run.
type FileSource interface {
	// Discover lists the HTML files in dir ordered by modification time,
	// ties broken by path, with Index assigned 0..n-1 in that order.
	// Returns ENOINPUT if the directory holds no HTML files.
	Discover(ctx context.Context, dir string) ([]*InputFile, error)
}

// DocumentStore persists the assembled document with atomic semantics.
// Save writes to a temporary location; Commit makes it permanent;
// Abort discards it.
type DocumentStore interface {
	Save(ctx context.Context, content string) error
	Commit() error
	Abort() error
}

// Limiter gates outbound calls to the conversion service.
type Limiter interface {
	// Acquire blocks until a permit is available or ctx is done.
	Acquire(ctx context.Context) error
}
