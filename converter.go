package html2md

import "context"

// Conversion is the Markdown produced for one HTML document.
type Conversion struct {
	// Title is the document title embedded in the response, if any.
	// Empty when the converter could not find one.
	Title string

	// Markdown is the converted body.
	Markdown string
}

// Converter converts cleaned HTML to Markdown.
type Converter interface {
	// Convert transforms cleaned HTML into Markdown.
	// Implementations backed by a remote service perform exactly one call
	// per invocation; retrying is the caller's concern. Errors are
	// classified with application error codes so callers can tell
	// transient failures (EUNAVAILABLE, ERATELIMITED) from permanent ones.
	Convert(ctx context.Context, html string) (*Conversion, error)
}

// Normalizer cleans raw HTML before conversion.
type Normalizer interface {
	// Normalize removes unwanted elements, comments and inline styles and
	// normalizes whitespace. It is a pure function of its input.
	Normalize(html string) (string, error)
}

// ExtractResult is the main content found in an HTML document.
type ExtractResult struct {
	// Title is the document title taken from its metadata, if any.
	Title string

	// ContentHTML is the main content with navigation and other page
	// furniture removed.
	ContentHTML string
}

// Extractor is an optional Normalizer stage that narrows a document to its
// main content. ENOTFOUND means no main content was recognized.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// TokenCounter counts prompt tokens for the conversion model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
