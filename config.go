package html2md

import (
	"regexp"
	"strings"
	"time"
)

// Extractor names accepted by Config.Extractor.
const (
	ExtractorNone        = "none"
	ExtractorReadability = "readability"
	ExtractorTrafilatura = "trafilatura"
)

// Backend names accepted by Config.Backend.
const (
	BackendGemini = "gemini"
	BackendLocal  = "local"
)

// Config is the resolved configuration of a conversion run.
type Config struct {
	// Model is the Gemini model identifier.
	Model string

	// ThinkingBudget is the model thinking budget in tokens.
	// -1 lets the model decide; 0 disables thinking.
	ThinkingBudget int

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// RetryBaseDelay is the backoff before the first retry.
	RetryBaseDelay time.Duration

	// RequestTimeout bounds a single conversion call. Zero means no limit.
	RequestTimeout time.Duration

	// MaxInputBytes rejects cleaned HTML larger than this. Zero disables.
	MaxInputBytes int

	// MaxInputTokens rejects prompts with more tokens than this. Zero disables.
	MaxInputTokens int

	MaxConcurrent      int
	RateLimitPerMinute int

	// RemoveTags lists the element names stripped before conversion.
	RemoveTags []string

	// Extractor selects an optional main-content extraction stage.
	Extractor string

	// Backend selects the converter implementation.
	Backend string

	Separator  string
	AddHeaders bool

	LogLevel string
	LogFile  string

	// LogMaxBytes rotates LogFile once it grows past this size.
	// Zero uses the rotation library's default.
	LogMaxBytes int

	// LogBackups is the number of rotated log files kept. Zero keeps all.
	LogBackups int
}

// DefaultConfig returns the configuration used when no file or override
// sets a value.
func DefaultConfig() Config {
	return Config{
		Model:              "gemini-2.5-flash",
		ThinkingBudget:     -1,
		MaxRetries:         3,
		RetryBaseDelay:     time.Second,
		RequestTimeout:     5 * time.Minute,
		MaxInputBytes:      4 << 20,
		MaxConcurrent:      20,
		RateLimitPerMinute: 875,
		RemoveTags:         []string{"script", "style", "noscript"},
		Extractor:          ExtractorNone,
		Backend:            BackendGemini,
		Separator:          DefaultSeparator,
		AddHeaders:         true,
		LogLevel:           "info",
		LogMaxBytes:        10 << 20,
		LogBackups:         5,
	}
}

var tagName = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// Validate returns EINVALID describing the first invalid field.
func (c Config) Validate() error {
	switch {
	case c.Backend != BackendGemini && c.Backend != BackendLocal:
		return Errorf(EINVALID, "backend must be %q or %q, got %q", BackendGemini, BackendLocal, c.Backend)
	case c.Backend == BackendGemini && strings.TrimSpace(c.Model) == "":
		return Errorf(EINVALID, "model required")
	case c.ThinkingBudget < -1:
		return Errorf(EINVALID, "thinking budget must be -1 or greater, got %d", c.ThinkingBudget)
	case c.MaxRetries < 0:
		return Errorf(EINVALID, "max retries must be 0 or greater, got %d", c.MaxRetries)
	case c.RetryBaseDelay < 0:
		return Errorf(EINVALID, "retry base delay must not be negative, got %s", c.RetryBaseDelay)
	case c.RequestTimeout < 0:
		return Errorf(EINVALID, "request timeout must not be negative, got %s", c.RequestTimeout)
	case c.MaxInputBytes < 0:
		return Errorf(EINVALID, "max input bytes must not be negative, got %d", c.MaxInputBytes)
	case c.MaxInputTokens < 0:
		return Errorf(EINVALID, "max input tokens must not be negative, got %d", c.MaxInputTokens)
	case c.MaxConcurrent < 1:
		return Errorf(EINVALID, "max concurrent must be at least 1, got %d", c.MaxConcurrent)
	case c.RateLimitPerMinute < 1:
		return Errorf(EINVALID, "rate limit per minute must be at least 1, got %d", c.RateLimitPerMinute)
	case c.LogMaxBytes < 0:
		return Errorf(EINVALID, "log max bytes must not be negative, got %d", c.LogMaxBytes)
	case c.LogBackups < 0:
		return Errorf(EINVALID, "log backup count must not be negative, got %d", c.LogBackups)
	}

	for _, tag := range c.RemoveTags {
		if !tagName.MatchString(tag) {
			return Errorf(EINVALID, "invalid tag name in remove tags: %q", tag)
		}
	}

	switch c.Extractor {
	case "", ExtractorNone, ExtractorReadability, ExtractorTrafilatura:
	default:
		return Errorf(EINVALID, "unknown extractor %q", c.Extractor)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return Errorf(EINVALID, "unknown log level %q", c.LogLevel)
	}
	return nil
}
