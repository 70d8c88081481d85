package mock

import (
	"context"

	"github.com/fwojciec/html2md"
)

var _ html2md.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of html2md.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return tc.CountTokensFn(ctx, text)
}
