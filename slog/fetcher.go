package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagemine"
)

// Ensure LoggingFetcher implements pagemine.Fetcher.
var _ pagemine.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging of each page fetch.
type LoggingFetcher struct {
	next   pagemine.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next pagemine.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, opts pagemine.FetchOptions) (result *pagemine.FetchResult, err error) {
	defer func(begin time.Time) {
		var bytes int
		if result != nil {
			bytes = len(result.HTML)
		}
		f.logger.Info("fetch",
			"url", url,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}

// Close closes the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
