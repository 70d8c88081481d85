package pipeline

import (
	"context"
	"time"

	"github.com/fwojciec/html2md"
	"golang.org/x/time/rate"
)

var _ html2md.Limiter = (*Limiter)(nil)

// Limiter grants at most perMinute permits in any 60-second window.
// Permits are spaced evenly (burst of 1), so a window can never hold
// more than the budget regardless of where it starts.
type Limiter struct {
	limiter  *rate.Limiter
	clock    Clock
	interval time.Duration
}

// NewLimiter creates a Limiter with the given per-minute budget.
// A nil clock uses the system clock.
func NewLimiter(perMinute int, clock Clock) (*Limiter, error) {
	if perMinute < 1 {
		return nil, html2md.Errorf(html2md.EINVALID, "rate limit must be at least 1 per minute, got %d", perMinute)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	interval := Interval(perMinute)
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		clock:    clock,
		interval: interval,
	}, nil
}

// Interval returns the spacing between permits for a per-minute budget:
// a minute divided by perMinute, rounded up, plus one nanosecond. The extra
// nanosecond covers the truncation rate.Limiter applies when it converts
// queued reservations back to durations, so R+1 grants always span at
// least a minute.
func Interval(perMinute int) time.Duration {
	n := time.Duration(perMinute)
	return (time.Minute+n-1)/n + 1
}

// Interval returns the spacing between permits.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until a permit is available or ctx is done.
// A cancelled wait gives its reservation back.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.clock.Now()
	r := l.limiter.ReserveN(now, 1)
	if !r.OK() {
		return html2md.Errorf(html2md.EINTERNAL, "rate limiter cannot grant a permit")
	}

	delay := r.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(l.clock.Now())
		return err
	}
	return nil
}
