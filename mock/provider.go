package mock

import (
	"context"

	"github.com/fwojciec/pagemine"
)

var _ pagemine.Provider = (*Provider)(nil)

// Provider is a mock implementation of pagemine.Provider.
type Provider struct {
	ExtractFn func(ctx context.Context, content, instruction string, schema map[string]any) ([]pagemine.Item, error)
}

func (p *Provider) Extract(ctx context.Context, content, instruction string, schema map[string]any) ([]pagemine.Item, error) {
	return p.ExtractFn(ctx, content, instruction, schema)
}
