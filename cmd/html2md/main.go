package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/html2md"
	"github.com/fwojciec/html2md/fs"
	"github.com/fwojciec/html2md/gemini"
	"github.com/fwojciec/html2md/goquery"
	"github.com/fwojciec/html2md/htmltomarkdown"
	"github.com/fwojciec/html2md/pipeline"
	"github.com/fwojciec/html2md/readability"
	h2mslog "github.com/fwojciec/html2md/slog"
	"github.com/fwojciec/html2md/trafilatura"
	"github.com/fwojciec/html2md/viper"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// GeminiBaseURL overrides the Gemini API endpoint. Empty uses the default.
	GeminiBaseURL string

	// Now returns the current time. Used for timestamped output names.
	Now func() time.Time
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Now: time.Now}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("html2md"),
		kong.Description("Convert a directory of HTML files into one ordered Markdown document"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	cfg, err := viper.Load(cli.Config, cli.Config != "")
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", html2md.ErrorMessage(err))
		return err
	}
	cli.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", html2md.ErrorMessage(err))
		return err
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer closeLog()

	deps, err := m.wire(ctx, cfg, cli.APIKey, logger)
	if err != nil {
		return err
	}
	deps.Stdout = stdout
	deps.Stderr = stderr

	cmd := &ConvertCmd{
		InputDir: cli.InputDir,
		Output:   cli.Output,
		OnExists: cli.OnExists,
		Format: html2md.FormatOptions{
			Separator:  cfg.Separator,
			AddHeaders: cfg.AddHeaders,
		},
	}
	return cmd.Run(deps)
}

// wire builds the services for a run from the resolved configuration.
func (m *Main) wire(ctx context.Context, cfg html2md.Config, apiKey string, logger *slog.Logger) (*Dependencies, error) {
	converter, err := m.newConverter(ctx, cfg, apiKey)
	if err != nil {
		return nil, err
	}

	var opts []goquery.Option
	switch cfg.Extractor {
	case html2md.ExtractorReadability:
		opts = append(opts, goquery.WithExtractor(readability.NewExtractor()))
	case html2md.ExtractorTrafilatura:
		opts = append(opts, goquery.WithExtractor(trafilatura.NewExtractor()))
	}

	limiter, err := pipeline.NewLimiter(cfg.RateLimitPerMinute, nil)
	if err != nil {
		return nil, err
	}

	retry := pipeline.DefaultRetryPolicy(cfg.MaxRetries, cfg.RetryBaseDelay)

	now := m.Now
	if now == nil {
		now = time.Now
	}

	return &Dependencies{
		Ctx:    ctx,
		Logger: logger,
		Source: h2mslog.NewLoggingSource(fs.NewSource(), logger),
		Scheduler: &pipeline.Pipeline{
			Normalizer:  h2mslog.NewLoggingNormalizer(goquery.NewNormalizer(cfg.RemoveTags, opts...), logger),
			Converter:   h2mslog.NewLoggingConverter(converter, logger),
			Limiter:     h2mslog.NewLoggingLimiter(limiter, logger, time.Second),
			Concurrency: cfg.MaxConcurrent,
			Retry:       retry,
			Logger:      logger,
		},
		NewStore: func(path string) html2md.DocumentStore {
			return h2mslog.NewLoggingStore(fs.NewFileStore(path), logger)
		},
		Now: now,
	}, nil
}

func (m *Main) newConverter(ctx context.Context, cfg html2md.Config, apiKey string) (html2md.Converter, error) {
	if cfg.Backend == html2md.BackendLocal {
		return htmltomarkdown.NewConverter(), nil
	}

	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: m.GeminiBaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	opts := []gemini.Option{
		gemini.WithThinkingBudget(cfg.ThinkingBudget),
		gemini.WithTimeout(cfg.RequestTimeout),
		gemini.WithMaxInputBytes(cfg.MaxInputBytes),
	}
	if cfg.MaxInputTokens > 0 {
		tc, err := gemini.NewTokenCounter(cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create token counter: %w", err)
		}
		opts = append(opts, gemini.WithTokenLimit(tc, cfg.MaxInputTokens))
	}
	return gemini.NewConverter(client, cfg.Model, opts...), nil
}
