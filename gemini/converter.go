// Package gemini converts HTML to Markdown with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fwojciec/html2md"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Converter implements html2md.Converter at compile time.
var _ html2md.Converter = (*Converter)(nil)

// Converter implements html2md.Converter using Google Gemini.
// Every Convert call makes at most one generateContent request.
type Converter struct {
	client *genai.Client
	model  string

	thinkingBudget int
	timeout        time.Duration
	maxInputBytes  int
	maxInputTokens int
	tokens         html2md.TokenCounter
}

// Option configures a Converter.
type Option func(*Converter)

// WithThinkingBudget sets the model thinking budget. -1 is dynamic.
func WithThinkingBudget(budget int) Option {
	return func(c *Converter) {
		c.thinkingBudget = budget
	}
}

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Converter) {
		c.timeout = d
	}
}

// WithMaxInputBytes rejects HTML larger than n bytes before calling the API.
func WithMaxInputBytes(n int) Option {
	return func(c *Converter) {
		c.maxInputBytes = n
	}
}

// WithTokenLimit rejects prompts above max tokens as counted by tc.
func WithTokenLimit(tc html2md.TokenCounter, max int) Option {
	return func(c *Converter) {
		c.tokens = tc
		c.maxInputTokens = max
	}
}

// NewConverter creates a new Converter for model.
func NewConverter(client *genai.Client, model string, opts ...Option) *Converter {
	if model == "" {
		model = DefaultModel
	}
	c := &Converter{
		client:         client,
		model:          model,
		thinkingBudget: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert sends cleaned HTML to Gemini and returns the Markdown response.
// A leading level-1 heading in the response becomes the title.
func (c *Converter) Convert(ctx context.Context, html string) (*html2md.Conversion, error) {
	if html == "" {
		return nil, html2md.Errorf(html2md.EINVALID, "empty HTML input")
	}
	if c.maxInputBytes > 0 && len(html) > c.maxInputBytes {
		return nil, html2md.Errorf(html2md.EINVALID, "input is %d bytes, limit is %d", len(html), c.maxInputBytes)
	}

	prompt := BuildPrompt(html)

	if c.tokens != nil && c.maxInputTokens > 0 {
		n, err := c.tokens.CountTokens(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("count tokens: %w", err)
		}
		if n > c.maxInputTokens {
			return nil, html2md.Errorf(html2md.EINVALID, "prompt is %d tokens, limit is %d", n, c.maxInputTokens)
		}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	result, err := c.client.Models.GenerateContent(callCtx, c.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(c.thinkingBudget),
	)
	if err != nil {
		return nil, classify(ctx, err)
	}
	if result == nil {
		return nil, html2md.Errorf(html2md.EUNAVAILABLE, "gemini returned nil result")
	}
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" && fb.BlockReason != genai.BlockedReasonUnspecified {
		return nil, html2md.Errorf(html2md.EINVALID, "prompt blocked: %s", fb.BlockReason)
	}

	text := result.Text()
	if text == "" {
		reason := "no candidates"
		if len(result.Candidates) > 0 && result.Candidates[0].FinishReason != "" {
			reason = "finish reason " + string(result.Candidates[0].FinishReason)
		}
		return nil, html2md.Errorf(html2md.EUNAVAILABLE, "gemini returned empty response (%s)", reason)
	}

	title, body := html2md.SplitTitle(text)
	return &html2md.Conversion{Title: title, Markdown: body}, nil
}

// BuildConfig returns the GenerateContentConfig for conversion calls.
func BuildConfig(thinkingBudget int) *genai.GenerateContentConfig {
	budget := int32(thinkingBudget)
	return &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &budget,
		},
	}
}

// BuildPrompt builds the conversion prompt for one HTML document.
func BuildPrompt(html string) string {
	return `Convert this HTML content to clean markdown format.

Guidelines:
- Focus on the main content, ignore navigation and UI elements
- Start directly with the main content, skip metadata
- Use hashtags for headings (e.g. "## Description", "## Solution", "## Tests"), do NOT use a single hashtag
- Preserve the structure and formatting of the content
- Convert HTML elements to appropriate markdown equivalents
- Do NOT use horizontal rules (---) in your output
- Keep code blocks, tables, and other structured content intact
- Remove any advertisements, navigation, or non-content elements

HTML Content:
` + html
}

// classify maps a generateContent failure to an application error code.
// Cancellation of the caller's context is returned unchanged.
func classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return html2md.Errorf(html2md.EUNAVAILABLE, "gemini request timed out")
		}
		return html2md.Errorf(html2md.EUNAVAILABLE, "gemini request failed: %v", err)
	}

	msg := apiErr.Message
	if msg == "" {
		msg = apiErr.Status
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		e := html2md.Errorf(html2md.ERATELIMITED, "gemini rate limited: %s", msg)
		e.RetryAfter = RetryDelay(apiErr)
		return e
	case apiErr.Code == http.StatusRequestTimeout || apiErr.Code >= 500:
		return html2md.Errorf(html2md.EUNAVAILABLE, "gemini unavailable (%d): %s", apiErr.Code, msg)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return html2md.Errorf(html2md.EUNAUTHORIZED, "gemini rejected credentials (%d): %s", apiErr.Code, msg)
	default:
		return html2md.Errorf(html2md.EINVALID, "gemini rejected request (%d): %s", apiErr.Code, msg)
	}
}

// RetryDelay returns the retryDelay of a RetryInfo detail, or zero.
func RetryDelay(apiErr genai.APIError) time.Duration {
	for _, detail := range apiErr.Details {
		raw, ok := detail["retryDelay"].(string)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}
