// Package readability isolates the main content of saved HTML pages.
package readability

import (
	"strings"

	"github.com/fwojciec/html2md"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements html2md.Extractor at compile time.
var _ html2md.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to drop page chrome before conversion.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article title and body of a saved page.
// Returns ENOTFOUND when no readable content is detected.
func (e *Extractor) Extract(rawHTML string) (*html2md.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, html2md.Errorf(html2md.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, html2md.Errorf(html2md.EINVALID, "readability: %v", err)
	}

	content := strings.TrimSpace(article.Content)
	if content == "" {
		return nil, html2md.Errorf(html2md.ENOTFOUND, "readability: no main content")
	}

	return &html2md.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: content,
	}, nil
}
