package pagemine

import "context"

// Provider converts a chunk of scraped text into structured items using an
// LLM backend.
//
// Implementations report network, auth, rate-limit and model failures as
// ordinary errors; the extraction pipeline is the single place where such
// failures are swallowed into zero-item batches. Returned items are not
// assumed to carry an id.
type Provider interface {
	// Extract sends content with the given instruction to the backend and
	// returns the structured records it produced. The schema, when non-nil,
	// is passed to the backend as a hint only; items are not validated
	// against it.
	Extract(ctx context.Context, content, instruction string, schema map[string]any) ([]Item, error)
}
