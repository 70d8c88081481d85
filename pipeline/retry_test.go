package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/html2md"
	"github.com/fwojciec/html2md/mock"
	"github.com/fwojciec/html2md/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClock returns a clock whose Sleep records waits and returns at once.
func recordingClock(sleeps *[]time.Duration) *mock.Clock {
	return &mock.Clock{
		NowFn: func() time.Time { return epoch },
		SleepFn: func(ctx context.Context, d time.Duration) error {
			*sleeps = append(*sleeps, d)
			return ctx.Err()
		},
	}
}

func noJitter(time.Duration) time.Duration { return 0 }

func testPolicy(maxRetries int, sleeps *[]time.Duration) pipeline.RetryPolicy {
	p := pipeline.DefaultRetryPolicy(maxRetries, time.Second)
	p.Jitter = noJitter
	p.Clock = recordingClock(sleeps)
	return p
}

func TestRetry_SucceedsFirstTime(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0

	v, attempts, err := pipeline.Retry(context.Background(), testPolicy(3, &sleeps), func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeps)
}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0

	v, attempts, err := pipeline.Retry(context.Background(), testPolicy(3, &sleeps), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, html2md.Errorf(html2md.EUNAVAILABLE, "overloaded")
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps)
}

func TestRetry_ExhaustsAfterMaxRetriesPlusOne(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0
	last := html2md.Errorf(html2md.ERATELIMITED, "quota exceeded")

	_, attempts, err := pipeline.Retry(context.Background(), testPolicy(3, &sleeps), func(context.Context) (string, error) {
		calls++
		return "", last
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, 4, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, sleeps)

	var retryErr *pipeline.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 4, retryErr.Attempts)
	assert.ErrorIs(t, err, last)
	assert.Equal(t, html2md.ERATELIMITED, html2md.ErrorCode(err))
	assert.Contains(t, err.Error(), "gave up after 4 attempts")
}

func TestRetry_ZeroRetriesCallsOnce(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0

	_, attempts, err := pipeline.Retry(context.Background(), testPolicy(0, &sleeps), func(context.Context) (string, error) {
		calls++
		return "", html2md.Errorf(html2md.EUNAVAILABLE, "down")
	})

	var retryErr *pipeline.RetryError
	require.ErrorAs(t, err, &retryErr)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeps)
}

func TestRetry_PermanentErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0
	permanent := html2md.Errorf(html2md.EINVALID, "malformed request")

	_, attempts, err := pipeline.Retry(context.Background(), testPolicy(3, &sleeps), func(context.Context) (string, error) {
		calls++
		return "", permanent
	})

	assert.Equal(t, permanent, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, sleeps)

	var retryErr *pipeline.RetryError
	assert.False(t, errors.As(err, &retryErr))
}

func TestRetry_ForeignErrorsArePermanent(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0

	_, _, err := pipeline.Retry(context.Background(), testPolicy(3, &sleeps), func(context.Context) (string, error) {
		calls++
		return "", errors.New("boom")
	})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestRetry_HonoursServerRetryHint(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	calls := 0

	_, _, err := pipeline.Retry(context.Background(), testPolicy(1, &sleeps), func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			e := html2md.Errorf(html2md.ERATELIMITED, "slow down")
			e.RetryAfter = 34 * time.Second
			return "", e
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, []time.Duration{34 * time.Second}, sleeps)
}

func TestRetry_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	policy := pipeline.DefaultRetryPolicy(3, time.Second)
	policy.Clock = &mock.Clock{
		NowFn: func() time.Time { return epoch },
		SleepFn: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, attempts, err := pipeline.Retry(ctx, policy, func(context.Context) (string, error) {
		calls++
		return "", html2md.Errorf(html2md.EUNAVAILABLE, "down")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
}

func TestRetry_OnRetryHook(t *testing.T) {
	t.Parallel()

	var sleeps []time.Duration
	type call struct {
		attempt int
		delay   time.Duration
	}
	var calls []call
	policy := testPolicy(2, &sleeps)
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		assert.Equal(t, html2md.EUNAVAILABLE, html2md.ErrorCode(err))
		calls = append(calls, call{attempt, delay})
	}

	_, _, _ = pipeline.Retry(context.Background(), policy, func(context.Context) (string, error) {
		return "", html2md.Errorf(html2md.EUNAVAILABLE, "down")
	})

	assert.Equal(t, []call{{1, time.Second}, {2, 2 * time.Second}}, calls)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	t.Parallel()

	t.Run("doubles per attempt", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{BaseDelay: 100 * time.Millisecond, Jitter: noJitter}

		assert.Equal(t, 100*time.Millisecond, p.Backoff(1, nil))
		assert.Equal(t, 200*time.Millisecond, p.Backoff(2, nil))
		assert.Equal(t, 800*time.Millisecond, p.Backoff(4, nil))
	})

	t.Run("adds jitter below half the base delay", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{BaseDelay: time.Second}

		for range 100 {
			d := p.Backoff(2, nil)
			assert.GreaterOrEqual(t, d, 2*time.Second)
			assert.Less(t, d, 2500*time.Millisecond)
		}
	})

	t.Run("caps at max delay", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{BaseDelay: time.Second, MaxDelay: 5 * time.Second, Jitter: noJitter}

		assert.Equal(t, 5*time.Second, p.Backoff(10, nil))
	})

	t.Run("does not overflow on large attempts", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{BaseDelay: time.Second, Jitter: noJitter}

		assert.Equal(t, 10*time.Minute, p.Backoff(200, nil))
	})

	t.Run("zero base delay means no wait", func(t *testing.T) {
		t.Parallel()

		p := pipeline.RetryPolicy{}

		assert.Zero(t, p.Backoff(3, nil))
	})
}
