// Package trafilatura isolates the main content of saved HTML pages.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/html2md"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements html2md.Extractor at compile time.
var _ html2md.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to drop page chrome before conversion.
// Links, images and tables are kept so the converter can render them.
type Extractor struct {
	opts trafilatura.Options
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			IncludeLinks:    true,
			IncludeImages:   true,
			ExcludeComments: true,
		},
	}
}

// Extract returns the page title and main content.
// Returns ENOTFOUND when no content node is detected.
func (e *Extractor) Extract(rawHTML string) (*html2md.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, html2md.Errorf(html2md.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, html2md.Errorf(html2md.ENOTFOUND, "trafilatura: %v", err)
	}
	if result.ContentNode == nil {
		return nil, html2md.Errorf(html2md.ENOTFOUND, "trafilatura: no main content")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, err
	}

	return &html2md.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
