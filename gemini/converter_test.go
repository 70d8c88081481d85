package gemini_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/html2md"
	"github.com/fwojciec/html2md/gemini"
	"github.com/fwojciec/html2md/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// newTestClient returns a genai client pointed at a fake Gemini endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *genai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return client
}

func respondText(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := `{"candidates":[{"content":{"role":"model","parts":[{"text":` + quote(text) + `}]},"finishReason":"STOP"}]}`
		io.WriteString(w, body)
	}
}

func respondError(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("returns markdown from response", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotKey, gotBody string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("x-goog-api-key")
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			respondText("## Description\n\nFind two numbers.")(w, r)
		})
		conv := gemini.NewConverter(client, "gemini-2.5-flash", gemini.WithThinkingBudget(512))

		result, err := conv.Convert(context.Background(), "<p>Find two numbers.</p>")

		require.NoError(t, err)
		assert.Equal(t, "", result.Title)
		assert.Equal(t, "## Description\n\nFind two numbers.", result.Markdown)
		assert.True(t, strings.HasSuffix(gotPath, "/models/gemini-2.5-flash:generateContent"), gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Contains(t, gotBody, "Find two numbers.")
		assert.Contains(t, gotBody, `"thinkingBudget":512`)
	})

	t.Run("splits leading h1 into title", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, respondText("# Two Sum\n\n## Description\n\nbody"))
		conv := gemini.NewConverter(client, "")

		result, err := conv.Convert(context.Background(), "<p>x</p>")

		require.NoError(t, err)
		assert.Equal(t, "Two Sum", result.Title)
		assert.Equal(t, "## Description\n\nbody", result.Markdown)
	})

	t.Run("rejects empty input without calling the API", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})

		_, err := gemini.NewConverter(client, "").Convert(context.Background(), "")

		assert.Equal(t, html2md.EINVALID, html2md.ErrorCode(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("rejects oversized input without calling the API", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
		conv := gemini.NewConverter(client, "", gemini.WithMaxInputBytes(10))

		_, err := conv.Convert(context.Background(), "<p>more than ten bytes</p>")

		assert.Equal(t, html2md.EINVALID, html2md.ErrorCode(err))
		assert.False(t, html2md.IsTransient(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("rejects prompts above token limit", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})
		tokens := &mock.TokenCounter{
			CountTokensFn: func(_ context.Context, text string) (int, error) {
				assert.Contains(t, text, "<p>x</p>")
				return 5000, nil
			},
		}
		conv := gemini.NewConverter(client, "", gemini.WithTokenLimit(tokens, 4000))

		_, err := conv.Convert(context.Background(), "<p>x</p>")

		assert.Equal(t, html2md.EINVALID, html2md.ErrorCode(err))
		assert.Zero(t, calls.Load())
	})

	t.Run("empty response is transient", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, respondError(http.StatusOK, `{"candidates":[]}`))

		_, err := gemini.NewConverter(client, "").Convert(context.Background(), "<p>x</p>")

		assert.Equal(t, html2md.EUNAVAILABLE, html2md.ErrorCode(err))
	})

	t.Run("blocked prompt is permanent", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, respondError(http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`))

		_, err := gemini.NewConverter(client, "").Convert(context.Background(), "<p>x</p>")

		assert.Equal(t, html2md.EINVALID, html2md.ErrorCode(err))
	})

	t.Run("request timeout is transient", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})
		conv := gemini.NewConverter(client, "", gemini.WithTimeout(50*time.Millisecond))

		_, err := conv.Convert(context.Background(), "<p>x</p>")

		assert.Equal(t, html2md.EUNAVAILABLE, html2md.ErrorCode(err))
	})

	t.Run("caller cancellation is returned unchanged", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, respondText("never"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := gemini.NewConverter(client, "").Convert(ctx, "<p>x</p>")

		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	})

	t.Run("unreachable service is transient", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey:      "test-key",
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: url},
		})
		require.NoError(t, err)

		_, err = gemini.NewConverter(client, "").Convert(context.Background(), "<p>x</p>")

		assert.Equal(t, html2md.EUNAVAILABLE, html2md.ErrorCode(err))
	})
}

func TestConverter_ClassifiesAPIErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		code   string
	}{
		{"rate limited", 429, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`, html2md.ERATELIMITED},
		{"server error", 500, `{"error":{"code":500,"message":"Internal error","status":"INTERNAL"}}`, html2md.EUNAVAILABLE},
		{"overloaded", 503, `{"error":{"code":503,"message":"The model is overloaded","status":"UNAVAILABLE"}}`, html2md.EUNAVAILABLE},
		{"deadline", 504, `{"error":{"code":504,"message":"Deadline exceeded","status":"DEADLINE_EXCEEDED"}}`, html2md.EUNAVAILABLE},
		{"request timeout", 408, `{"error":{"code":408,"message":"Request timeout"}}`, html2md.EUNAVAILABLE},
		{"bad key", 401, `{"error":{"code":401,"message":"API key not valid","status":"UNAUTHENTICATED"}}`, html2md.EUNAUTHORIZED},
		{"forbidden", 403, `{"error":{"code":403,"message":"Permission denied","status":"PERMISSION_DENIED"}}`, html2md.EUNAUTHORIZED},
		{"bad request", 400, `{"error":{"code":400,"message":"Invalid argument","status":"INVALID_ARGUMENT"}}`, html2md.EINVALID},
		{"unknown model", 404, `{"error":{"code":404,"message":"models/nope is not found","status":"NOT_FOUND"}}`, html2md.EINVALID},
		{"plain text body", 502, `Bad Gateway`, html2md.EUNAVAILABLE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, respondError(tt.status, tt.body))

			_, err := gemini.NewConverter(client, "").Convert(context.Background(), "<p>x</p>")

			require.Error(t, err)
			assert.Equal(t, tt.code, html2md.ErrorCode(err))
		})
	}
}

func TestConverter_RateLimitCarriesRetryDelay(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, respondError(429, `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED","details":[{"@type":"type.googleapis.com/google.rpc.QuotaFailure"},{"@type":"type.googleapis.com/google.rpc.RetryInfo","retryDelay":"34s"}]}}`))

	_, err := gemini.NewConverter(client, "").Convert(context.Background(), "<p>x</p>")

	assert.Equal(t, html2md.ERATELIMITED, html2md.ErrorCode(err))
	assert.Equal(t, 34*time.Second, html2md.RetryAfter(err))
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	t.Run("parses fractional seconds", func(t *testing.T) {
		t.Parallel()

		d := gemini.RetryDelay(genai.APIError{Details: []map[string]any{{"retryDelay": "1.5s"}}})

		assert.Equal(t, 1500*time.Millisecond, d)
	})

	t.Run("ignores malformed values", func(t *testing.T) {
		t.Parallel()

		d := gemini.RetryDelay(genai.APIError{Details: []map[string]any{{"retryDelay": 12}, {"retryDelay": "soon"}}})

		assert.Zero(t, d)
	})
}

func TestBuildConfig_SetsThinkingBudget(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(-1)

	require.NotNil(t, config.ThinkingConfig)
	require.NotNil(t, config.ThinkingConfig.ThinkingBudget)
	assert.Equal(t, int32(-1), *config.ThinkingConfig.ThinkingBudget)
	assert.False(t, config.ThinkingConfig.IncludeThoughts)
}

func TestBuildPrompt_EmbedsHTMLAfterGuidelines(t *testing.T) {
	t.Parallel()

	prompt := gemini.BuildPrompt("<p>payload</p>")

	assert.True(t, strings.HasSuffix(prompt, "HTML Content:\n<p>payload</p>"))
	assert.Contains(t, prompt, "do NOT use a single hashtag")
	assert.Contains(t, prompt, "Do NOT use horizontal rules")
}
