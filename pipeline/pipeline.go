// Package pipeline orchestrates LLM-driven extraction of structured records
// from scraped text: segmentation into bounded blocks, batching, bounded-
// concurrency dispatch to a provider, and aggregation of per-batch results.
package pipeline

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/pagemine"
	"golang.org/x/sync/errgroup"
)

// Defaults used when the corresponding Pipeline field is zero. MaxBlockChars
// keeps a block comfortably inside a 4k-token context window; Concurrency is
// kept small to respect backend rate limits.
const (
	DefaultMaxBlockChars = 4000
	DefaultBatchSize     = 5
	DefaultConcurrency   = 3
)

// ProgressFunc receives the percentage of batches settled so far.
type ProgressFunc func(percent int)

// ChunkFunc receives a batch's items as soon as the batch completes,
// enabling persistence before the whole run finishes. Delivery order is
// completion order, not batch order.
type ChunkFunc func(items []pagemine.Item)

// Pipeline runs the extraction pipeline over a document.
type Pipeline struct {
	Provider      pagemine.Provider
	MaxBlockChars int
	BatchSize     int
	Concurrency   int
	Logger        *slog.Logger
}

// Options configures a single Run.
type Options struct {
	// Schema is passed through to the provider as a hint only.
	Schema map[string]any

	// SplitPattern is an optional custom regexp for segmentation.
	SplitPattern string

	// Existing items whose ids must not be reused by items produced in
	// this run.
	Existing []pagemine.Item

	// Progress, if set, is called after every batch settles.
	Progress ProgressFunc

	// OnChunk, if set, is called with each successful batch's items.
	OnChunk ChunkFunc
}

// batchResult holds the outcome of one provider call.
type batchResult struct {
	index int
	items []pagemine.Item
	err   error
}

// Run segments the document, dispatches batches to the provider with bounded
// concurrency, and returns all extracted items concatenated in batch
// submission order.
//
// Failure isolation is per batch: a provider error or an empty response
// contributes zero items and never aborts the run. No retries happen at this
// layer; providers that need them must retry internally. Run returns only
// after every dispatched batch has settled.
func (p *Pipeline) Run(ctx context.Context, markdown, instruction string, opts Options) ([]pagemine.Item, error) {
	if p.Provider == nil {
		return nil, pagemine.Errorf(pagemine.EINVALID, "pipeline provider required")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxChars := p.MaxBlockChars
	if maxChars <= 0 {
		maxChars = DefaultMaxBlockChars
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	blocks := pagemine.SplitBlocks(markdown, maxChars, opts.SplitPattern)
	logger.Info("segmented document", "blocks", len(blocks), "maxChars", maxChars)
	if len(blocks) == 0 {
		return nil, nil
	}

	batches := batchBlocks(blocks, batchSize)
	total := len(batches)

	resultCh := make(chan batchResult, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, batch := range batches {
			g.Go(func() error {
				items, err := p.Provider.Extract(gctx, batch, instruction, opts.Schema)
				resultCh <- batchResult{index: i, items: items, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Single consumer loop: id deduplication, chunk streaming, and progress
	// reporting are serialized here, so callbacks never race.
	ordered := make([][]pagemine.Item, total)
	seen := append([]pagemine.Item(nil), opts.Existing...)
	var failed int

	for res := range resultCh {
		switch {
		case res.err != nil:
			failed++
			logger.Warn("batch failed",
				"batch", res.index+1,
				"total", total,
				"err", res.err,
			)
		case len(res.items) == 0:
			failed++
			logger.Warn("batch returned no items",
				"batch", res.index+1,
				"total", total,
			)
		default:
			items := pagemine.AssignUniqueIDs(res.items, seen)
			seen = append(seen, items...)
			ordered[res.index] = items
			if opts.OnChunk != nil {
				opts.OnChunk(items)
			}
			logger.Info("batch extracted",
				"batch", res.index+1,
				"total", total,
				"items", len(items),
			)
		}

		done := completed.Add(1)
		if opts.Progress != nil {
			opts.Progress(int(math.Round(float64(done) / float64(total) * 100)))
		}
	}

	// A run where every batch came back failed or empty completes "successfully"
	// with zero items; surface a signal so systematic outages are not silent.
	if failed == total {
		logger.Warn("all batches failed or returned no items", "batches", total)
	}

	var results []pagemine.Item
	for _, items := range ordered {
		results = append(results, items...)
	}
	return results, nil
}

// batchBlocks groups contiguous blocks into batches of at most size,
// joined with a blank-line separator.
func batchBlocks(blocks []string, size int) []string {
	batches := make([]string, 0, (len(blocks)+size-1)/size)
	for start := 0; start < len(blocks); start += size {
		end := min(start+size, len(blocks))
		batches = append(batches, strings.Join(blocks[start:end], "\n\n"))
	}
	return batches
}
