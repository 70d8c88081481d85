package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/html2md"
)

// Ensure LoggingLimiter implements html2md.Limiter.
var _ html2md.Limiter = (*LoggingLimiter)(nil)

// LoggingLimiter wraps a Limiter and logs waits longer than a threshold.
type LoggingLimiter struct {
	next      html2md.Limiter
	logger    *slog.Logger
	threshold time.Duration
}

// NewLoggingLimiter creates a new LoggingLimiter. Waits at or below
// threshold are not logged.
func NewLoggingLimiter(next html2md.Limiter, logger *slog.Logger, threshold time.Duration) *LoggingLimiter {
	return &LoggingLimiter{next: next, logger: logger, threshold: threshold}
}

// Acquire delegates to the wrapped limiter.
func (l *LoggingLimiter) Acquire(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		wait := time.Since(begin)
		if err != nil {
			l.logger.Debug("rate limit wait abandoned", "wait", wait, "err", err)
			return
		}
		if wait > l.threshold {
			l.logger.Debug("rate limit wait", "wait", wait)
		}
	}(time.Now())
	return l.next.Acquire(ctx)
}
