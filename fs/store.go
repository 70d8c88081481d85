package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/html2md"
)

// Ensure FileStore implements html2md.DocumentStore at compile time.
var _ html2md.DocumentStore = (*FileStore)(nil)

// FileStore implements html2md.DocumentStore with atomic update semantics.
// The document is saved to a temporary file next to the destination, then
// renamed over it on Commit.
type FileStore struct {
	path string

	mu   sync.Mutex
	temp string
}

// NewFileStore creates a FileStore that writes to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the destination path.
func (s *FileStore) Path() string {
	return s.path
}

// Save writes content to a fresh temporary file. A previous uncommitted
// save is discarded.
func (s *FileStore) Save(ctx context.Context, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.removeTemp(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return err
	}

	s.temp = f.Name()
	return nil
}

// Commit renames the saved file into place.
func (s *FileStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.temp == "" {
		return html2md.Errorf(html2md.EINTERNAL, "commit without save: %s", s.path)
	}
	if err := os.Rename(s.temp, s.path); err != nil {
		return err
	}
	s.temp = ""
	return nil
}

// Abort removes the saved file, if any. The destination is untouched.
func (s *FileStore) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeTemp()
}

func (s *FileStore) removeTemp() error {
	if s.temp == "" {
		return nil
	}
	if err := os.Remove(s.temp); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.temp = ""
	return nil
}
