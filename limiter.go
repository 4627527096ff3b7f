package pagemine

import "context"

// DomainLimiter rate-limits requests on a per-domain basis.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain,
	// or the context is canceled.
	Wait(ctx context.Context, domain string) error
}
