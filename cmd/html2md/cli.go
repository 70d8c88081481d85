package main

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/html2md"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Source    html2md.FileSource
	Scheduler html2md.Scheduler

	// NewStore returns the store that writes the document to path.
	NewStore func(path string) html2md.DocumentStore

	Now func() time.Time
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	InputDir string `arg:"" help:"Directory containing the HTML files"`
	Output   string `short:"o" default:"output.md" help:"Output file, relative to the input directory unless absolute"`
	OnExists string `name:"on-exists" default:"fail" enum:"fail,overwrite,timestamp" help:"What to do when the output file exists (fail, overwrite, timestamp)"`
	Config   string `help:"Configuration file (default: config.json if present)"`
	APIKey   string `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`

	Concurrent int    `short:"c" help:"Maximum concurrent conversions (overrides config)"`
	Model      string `help:"Gemini model (overrides config)"`
	MaxRetries int    `name:"max-retries" default:"-1" help:"Retries per file after the first attempt (overrides config)"`
	RateLimit  int    `name:"rate-limit" help:"Requests per minute (overrides config)"`
	Backend    string `help:"Conversion backend: gemini or local (overrides config)"`
	Extractor  string `help:"Main-content extractor: none, readability or trafilatura (overrides config)"`
	LogLevel   string `name:"log-level" help:"Log level: debug, info, warn or error (overrides config)"`
}

// Apply overrides cfg with the flags that were set.
func (c *CLI) Apply(cfg *html2md.Config) {
	if c.Concurrent > 0 {
		cfg.MaxConcurrent = c.Concurrent
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if c.MaxRetries >= 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RateLimit > 0 {
		cfg.RateLimitPerMinute = c.RateLimit
	}
	if c.Backend != "" {
		cfg.Backend = strings.ToLower(c.Backend)
	}
	if c.Extractor != "" {
		cfg.Extractor = strings.ToLower(c.Extractor)
	}
	if c.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(c.LogLevel)
	}
}

// ConvertCmd converts every HTML file in InputDir into one document.
type ConvertCmd struct {
	InputDir string
	Output   string
	OnExists string
	Format   html2md.FormatOptions
}
