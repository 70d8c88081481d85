package mock

import (
	"context"

	"github.com/fwojciec/html2md"
)

var _ html2md.Converter = (*Converter)(nil)

// Converter is a mock implementation of html2md.Converter.
type Converter struct {
	ConvertFn func(ctx context.Context, html string) (*html2md.Conversion, error)
}

func (c *Converter) Convert(ctx context.Context, html string) (*html2md.Conversion, error) {
	return c.ConvertFn(ctx, html)
}

var _ html2md.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of html2md.Normalizer.
type Normalizer struct {
	NormalizeFn func(html string) (string, error)
}

func (n *Normalizer) Normalize(html string) (string, error) {
	return n.NormalizeFn(html)
}
