package mock

import "github.com/fwojciec/html2md"

var _ html2md.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of html2md.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*html2md.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*html2md.ExtractResult, error) {
	return e.ExtractFn(html)
}
