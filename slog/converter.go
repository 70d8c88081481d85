// Package slog provides logging decorators for html2md services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/html2md"
)

// Ensure LoggingConverter implements html2md.Converter.
var _ html2md.Converter = (*LoggingConverter)(nil)

// LoggingConverter wraps a Converter with logging of each call.
type LoggingConverter struct {
	next   html2md.Converter
	logger *slog.Logger
}

// NewLoggingConverter creates a new LoggingConverter.
func NewLoggingConverter(next html2md.Converter, logger *slog.Logger) *LoggingConverter {
	return &LoggingConverter{next: next, logger: logger}
}

// Convert delegates to the wrapped converter and logs the operation.
func (c *LoggingConverter) Convert(ctx context.Context, html string) (conv *html2md.Conversion, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if conv != nil {
			attrs = append(attrs, "markdown_bytes", len(conv.Markdown))
		}
		if err != nil {
			attrs = append(attrs, "code", html2md.ErrorCode(err), "err", err)
		}
		c.logger.Debug("convert", attrs...)
	}(time.Now())
	return c.next.Convert(ctx, html)
}

// Ensure LoggingNormalizer implements html2md.Normalizer.
var _ html2md.Normalizer = (*LoggingNormalizer)(nil)

// LoggingNormalizer wraps a Normalizer with logging of size reduction.
type LoggingNormalizer struct {
	next   html2md.Normalizer
	logger *slog.Logger
}

// NewLoggingNormalizer creates a new LoggingNormalizer.
func NewLoggingNormalizer(next html2md.Normalizer, logger *slog.Logger) *LoggingNormalizer {
	return &LoggingNormalizer{next: next, logger: logger}
}

// Normalize delegates to the wrapped normalizer and logs the operation.
func (n *LoggingNormalizer) Normalize(html string) (out string, err error) {
	defer func(begin time.Time) {
		n.logger.Debug("normalize",
			"bytes_in", len(html),
			"bytes_out", len(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return n.next.Normalize(html)
}
