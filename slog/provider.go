// Package slog provides logging decorators for pagemine services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagemine"
)

// Ensure LoggingProvider implements pagemine.Provider.
var _ pagemine.Provider = (*LoggingProvider)(nil)

// LoggingProvider wraps a Provider with logging of each extraction call.
type LoggingProvider struct {
	next   pagemine.Provider
	logger *slog.Logger
}

// NewLoggingProvider creates a new LoggingProvider.
func NewLoggingProvider(next pagemine.Provider, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{next: next, logger: logger}
}

// Extract delegates to the wrapped provider and logs the operation.
func (p *LoggingProvider) Extract(ctx context.Context, content, instruction string, schema map[string]any) (items []pagemine.Item, err error) {
	defer func(begin time.Time) {
		p.logger.Info("extract",
			"chars", len(content),
			"items", len(items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Extract(ctx, content, instruction, schema)
}
