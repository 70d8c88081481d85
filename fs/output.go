package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/html2md"
)

// Policies for an output path that already exists.
const (
	OnExistsFail      = "fail"
	OnExistsOverwrite = "overwrite"
	OnExistsTimestamp = "timestamp"
)

// ResolveOutputPath returns the file the run should write to.
// A relative output is resolved against inputDir. When the file already
// exists, policy decides: fail returns ECONFLICT, overwrite keeps the path,
// and timestamp inserts the Unix time of now before the extension.
func ResolveOutputPath(inputDir, output, policy string, now time.Time) (string, error) {
	if strings.TrimSpace(output) == "" {
		return "", html2md.Errorf(html2md.EINVALID, "output path required")
	}

	path := output
	if !filepath.IsAbs(path) {
		path = filepath.Join(inputDir, path)
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", html2md.Errorf(html2md.EINVALID, "output path is a directory: %s", path)
	}

	switch policy {
	case OnExistsFail, "":
		return "", html2md.Errorf(html2md.ECONFLICT, "output file already exists: %s", path)
	case OnExistsOverwrite:
		return path, nil
	case OnExistsTimestamp:
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(path, ext)
		return fmt.Sprintf("%s_%d%s", stem, now.Unix(), ext), nil
	default:
		return "", html2md.Errorf(html2md.EINVALID, "unknown on-exists policy %q", policy)
	}
}
