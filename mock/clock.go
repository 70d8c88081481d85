package mock

import (
	"context"
	"time"

	"github.com/fwojciec/html2md/pipeline"
)

var _ pipeline.Clock = (*Clock)(nil)

// Clock is a mock implementation of pipeline.Clock.
type Clock struct {
	NowFn   func() time.Time
	SleepFn func(ctx context.Context, d time.Duration) error
}

func (c *Clock) Now() time.Time {
	return c.NowFn()
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	return c.SleepFn(ctx, d)
}
