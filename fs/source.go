// Package fs provides file-based input discovery and atomic output storage.
package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/html2md"
)

// Ensure Source implements html2md.FileSource at compile time.
var _ html2md.FileSource = (*Source)(nil)

// Source discovers HTML files in a single directory.
type Source struct{}

// NewSource creates a new Source.
func NewSource() *Source {
	return &Source{}
}

// Discover lists the .html and .htm files directly inside dir, oldest first.
// Files with identical modification times are ordered by path.
func (s *Source) Discover(ctx context.Context, dir string) ([]*html2md.InputFile, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, html2md.Errorf(html2md.ENOTFOUND, "input directory not found: %s", dir)
	} else if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, html2md.Errorf(html2md.EINVALID, "input path is not a directory: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []*html2md.InputFile
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() || !IsHTML(entry.Name()) {
			continue
		}
		fi, err := entry.Info()
		if errors.Is(err, os.ErrNotExist) {
			// Removed between ReadDir and Info.
			continue
		} else if err != nil {
			return nil, err
		}
		files = append(files, &html2md.InputFile{
			Path:    filepath.Join(dir, entry.Name()),
			ModTime: fi.ModTime(),
		})
	}

	if len(files) == 0 {
		return nil, html2md.Errorf(html2md.ENOINPUT, "no HTML files found in %s", dir)
	}

	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.Before(b.ModTime)
		}
		return a.Path < b.Path
	})
	for i, f := range files {
		f.Index = i
	}
	return files, nil
}

// IsHTML reports whether name has an .html or .htm extension.
func IsHTML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	}
	return false
}
