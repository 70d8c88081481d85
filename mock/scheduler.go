package mock

import (
	"context"

	"github.com/fwojciec/html2md"
)

var _ html2md.Scheduler = (*Scheduler)(nil)

// Scheduler is a mock implementation of html2md.Scheduler.
type Scheduler struct {
	RunAllFn func(ctx context.Context, files []*html2md.InputFile, progress html2md.ProgressFunc) (*html2md.State, error)
}

func (s *Scheduler) RunAll(ctx context.Context, files []*html2md.InputFile, progress html2md.ProgressFunc) (*html2md.State, error) {
	return s.RunAllFn(ctx, files, progress)
}
