package mock

import (
	"context"

	"github.com/fwojciec/pagemine"
)

var _ pagemine.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of pagemine.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, opts pagemine.FetchOptions) (*pagemine.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts pagemine.FetchOptions) (*pagemine.FetchResult, error) {
	return f.FetchFn(ctx, url, opts)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
