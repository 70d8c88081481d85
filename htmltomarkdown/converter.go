// Package htmltomarkdown provides an offline html2md.Converter.
package htmltomarkdown

import (
	"context"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/html2md"
)

// Ensure Converter implements html2md.Converter at compile time.
var _ html2md.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown locally.
// It makes no network calls and never returns a transient error.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML into Markdown. A leading level-1 heading becomes
// the conversion title.
func (c *Converter) Convert(ctx context.Context, html string) (*html2md.Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(html) == "" {
		return nil, html2md.Errorf(html2md.EINVALID, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html, converter.WithContext(ctx))
	if err != nil {
		return nil, html2md.Errorf(html2md.EINVALID, "html-to-markdown: %v", err)
	}

	title, body := html2md.SplitTitle(md)
	return &html2md.Conversion{Title: title, Markdown: body}, nil
}
