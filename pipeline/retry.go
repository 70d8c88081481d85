package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/fwojciec/html2md"
)

// maxBackoff bounds the exponential term when no MaxDelay is set.
const maxBackoff = 10 * time.Minute

// RetryPolicy controls how Retry repeats a failing operation.
type RetryPolicy struct {
	// MaxAttempts is the total number of invocations, first included.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. The wait doubles on
	// every further retry and gains jitter in [0, BaseDelay/2).
	BaseDelay time.Duration

	// MaxDelay caps the computed wait. Zero means no cap.
	// A server-provided retry hint may still exceed it.
	MaxDelay time.Duration

	// Retryable reports whether err is worth retrying.
	// Nil uses html2md.IsTransient.
	Retryable func(error) bool

	// Jitter returns a random duration in [0, limit). Nil uses math/rand.
	Jitter func(limit time.Duration) time.Duration

	// OnRetry, if set, is called before each backoff wait.
	OnRetry func(attempt int, delay time.Duration, err error)

	// Clock is used for backoff waits. Nil uses the system clock.
	Clock Clock
}

// DefaultRetryPolicy returns a policy with maxRetries retries after the
// first attempt, starting at base and doubling.
func DefaultRetryPolicy(maxRetries int, base time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxRetries + 1,
		BaseDelay:   base,
		MaxDelay:    time.Minute,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int, err error) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	if d > maxBackoff {
		d = maxBackoff
	}

	if half := p.BaseDelay / 2; half > 0 {
		jitter := p.Jitter
		if jitter == nil {
			jitter = rand.N[time.Duration]
		}
		d += jitter(half)
	}

	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if hint := html2md.RetryAfter(err); hint > d {
		d = hint
	}
	return d
}

// RetryError reports that every allowed attempt failed.
// It wraps the last error, so its error code stays visible to ErrorCode.
type RetryError struct {
	Attempts int
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error {
	return e.Err
}

// Retry calls op until it succeeds, fails with a non-retryable error, or
// the policy's attempts are used up. It returns the value, the number of
// invocations made, and the error. Exhaustion yields a *RetryError; a
// non-retryable error is returned as is; cancellation during a backoff
// wait returns ctx.Err().
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, int, error) {
	var zero T

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = html2md.IsTransient
	}
	clock := p.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, attempt, nil
		}
		if !retryable(err) {
			return zero, attempt, err
		}
		if attempt >= maxAttempts {
			return zero, attempt, &RetryError{Attempts: attempt, Err: err}
		}

		delay := p.Backoff(attempt, err)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}
		if err := clock.Sleep(ctx, delay); err != nil {
			return zero, attempt, err
		}
	}
}
