// Package pipeline converts a set of HTML files concurrently under a rate
// limit, retrying transient failures and keeping results in input order.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/html2md"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Pipeline.Concurrency is not positive.
const DefaultConcurrency = 20

var _ html2md.Scheduler = (*Pipeline)(nil)

// Pipeline orchestrates the conversion of discovered input files.
type Pipeline struct {
	Normalizer  html2md.Normalizer
	Converter   html2md.Converter
	Limiter     html2md.Limiter
	Concurrency int
	Retry       RetryPolicy

	// ReadFile loads an input file. Nil uses os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	// Logger receives per-file diagnostics. Nil discards them.
	Logger *slog.Logger

	total     atomic.Int64
	inFlight  atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// message carries a worker notification to the collector.
type message struct {
	started *html2md.InputFile
	result  *html2md.Result
}

// Stats returns a snapshot of the run's counters. It is safe to call
// from any goroutine while RunAll is in progress.
func (p *Pipeline) Stats() html2md.Stats {
	return html2md.Stats{
		Total:     int(p.total.Load()),
		InFlight:  int(p.inFlight.Load()),
		Completed: int(p.completed.Load()),
		Failed:    int(p.failed.Load()),
	}
}

// RunAll converts every file and records exactly one Result per index.
// The progress callback, if provided, is invoked on the calling goroutine.
func (p *Pipeline) RunAll(ctx context.Context, files []*html2md.InputFile, progress html2md.ProgressFunc) (*html2md.State, error) {
	switch {
	case p.Normalizer == nil:
		return nil, html2md.Errorf(html2md.EINVALID, "pipeline has no normalizer")
	case p.Converter == nil:
		return nil, html2md.Errorf(html2md.EINVALID, "pipeline has no converter")
	case p.Limiter == nil:
		return nil, html2md.Errorf(html2md.EINVALID, "pipeline has no limiter")
	}
	if err := validateIndices(files); err != nil {
		return nil, err
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	total := len(files)
	p.total.Store(int64(total))
	p.inFlight.Store(0)
	p.completed.Store(0)
	p.failed.Store(0)

	state := html2md.NewState(total)
	msgCh := make(chan message, 2*total)

	g := new(errgroup.Group)
	g.SetLimit(concurrency)

	go func() {
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				msgCh <- message{result: &html2md.Result{Index: f.Index, File: f, Err: err}}
				continue
			}
			g.Go(func() error {
				p.inFlight.Add(1)
				msgCh <- message{started: f}
				result := p.convertFile(ctx, logger, f)
				p.inFlight.Add(-1)
				msgCh <- message{result: result}
				return nil
			})
		}
		_ = g.Wait()
		close(msgCh)
	}()

	for msg := range msgCh {
		if msg.started != nil {
			if progress != nil {
				progress(html2md.ProgressEvent{
					Type:      html2md.ProgressStarted,
					Index:     msg.started.Index,
					Path:      msg.started.Path,
					Completed: state.Completed,
					Failed:    state.Failed,
					Total:     total,
				})
			}
			continue
		}

		r := msg.result
		if err := state.Record(r); err != nil {
			// Indices were validated up front, so this is a bug.
			logger.Error("dropping result", "index", r.Index, "error", err)
			continue
		}
		p.completed.Add(1)
		eventType := html2md.ProgressCompleted
		if !r.OK() {
			p.failed.Add(1)
			eventType = html2md.ProgressFailed
		}
		if progress != nil {
			progress(html2md.ProgressEvent{
				Type:      eventType,
				Index:     r.Index,
				Path:      r.File.Path,
				Completed: state.Completed,
				Failed:    state.Failed,
				Total:     total,
				Err:       r.Err,
			})
		}
	}

	if progress != nil {
		progress(html2md.ProgressEvent{
			Type:      html2md.ProgressFinished,
			Completed: state.Completed,
			Failed:    state.Failed,
			Total:     total,
		})
	}

	if err := ctx.Err(); err != nil {
		return state, err
	}
	return state, nil
}

// convertFile runs one file through normalization and conversion.
// Each conversion attempt takes its own rate-limit permit.
func (p *Pipeline) convertFile(ctx context.Context, logger *slog.Logger, f *html2md.InputFile) *html2md.Result {
	result := &html2md.Result{Index: f.Index, File: f}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	readFile := p.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	raw, err := readFile(f.Path)
	if err != nil {
		result.Err = fmt.Errorf("read %s: %w", f.Name(), err)
		return result
	}

	cleaned, err := p.Normalizer.Normalize(string(raw))
	if err != nil {
		result.Err = fmt.Errorf("normalize %s: %w", f.Name(), err)
		return result
	}

	policy := p.Retry
	onRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		logger.Warn("conversion attempt failed", "file", f.Name(), "attempt", attempt, "delay", delay, "error", err)
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}

	conv, attempts, err := Retry(ctx, policy, func(ctx context.Context) (*html2md.Conversion, error) {
		if err := p.Limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		return p.Converter.Convert(ctx, cleaned)
	})
	result.Attempts = attempts
	if err != nil {
		logger.Error("conversion failed", "file", f.Name(), "attempts", attempts, "error", err)
		result.Err = err
		return result
	}

	result.Title = conv.Title
	if result.Title == "" {
		result.Title = html2md.CleanFilename(f.Name())
	}
	result.Markdown = conv.Markdown
	result.Hash = ComputeHash(conv.Markdown)
	return result
}

// validateIndices checks that file indices are a permutation of [0, n).
func validateIndices(files []*html2md.InputFile) error {
	seen := make([]bool, len(files))
	for _, f := range files {
		if f == nil {
			return html2md.Errorf(html2md.EINVALID, "nil input file")
		}
		if f.Index < 0 || f.Index >= len(files) {
			return html2md.Errorf(html2md.EINVALID, "file %s has index %d outside [0, %d)", f.Path, f.Index, len(files))
		}
		if seen[f.Index] {
			return html2md.Errorf(html2md.EINVALID, "duplicate index %d", f.Index)
		}
		seen[f.Index] = true
	}
	return nil
}

// ComputeHash returns the xxhash of content as lowercase hex.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
