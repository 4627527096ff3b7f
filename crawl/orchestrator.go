// Package crawl orchestrates multi-page scrape-and-extract runs.
// It coordinates fetching, pagination discovery, pipeline extraction,
// and streaming storage of results.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/pagemine"
	"github.com/fwojciec/pagemine/bloom"
	"github.com/fwojciec/pagemine/goquery"
	"github.com/fwojciec/pagemine/pipeline"
)

// Pagination loop guards.
const (
	// expectedPages sizes the visited-URL Bloom filter.
	expectedPages = 1000
	// falsePositiveRate is the acceptable false positive rate for
	// visited-URL deduplication.
	falsePositiveRate = 0.01
)

// Orchestrator runs scrape-and-extract jobs page by page.
type Orchestrator struct {
	Fetcher     pagemine.Fetcher
	Pipeline    *pipeline.Pipeline
	RateLimiter pagemine.DomainLimiter
	RetryDelays []time.Duration
	Logger      *slog.Logger
}

// Options configures a single run.
type Options struct {
	// Schema is an optional JSON schema hint for the provider.
	Schema map[string]any

	// SplitPattern is an optional custom regexp for segmentation.
	SplitPattern string

	// MaxPages bounds pagination. Zero or one means single page.
	MaxPages int

	// NextSelector is an optional CSS selector for the next-page link.
	// When empty, discovery falls back to rel="next" and link-text heuristics.
	NextSelector string

	// Fetch configures each page fetch.
	Fetch pagemine.FetchOptions

	// Progress, if set, receives events as the run proceeds.
	Progress ProgressFunc
}

// Result holds the outcome of a run.
type Result struct {
	// Pages is the number of pages processed.
	Pages int

	// Items are all extracted items in page order, ids already unique.
	Items []pagemine.Item

	// Files are the paths written by the store's Finalize.
	Files []string
}

// ProgressEvent reports progress during a run.
type ProgressEvent struct {
	Type    ProgressType
	Page    int
	URL     string
	Percent int
	Items   int
	Error   error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPageCompleted
	ProgressPageFailed
	ProgressBatch
	ProgressFinished
)

// ProgressFunc is a callback for reporting run progress.
type ProgressFunc func(event ProgressEvent)

// Run fetches startURL and follows next-page links up to MaxPages, running
// the extraction pipeline over each page and streaming results into store.
//
// Per-page extraction failures never abort the run; the page simply
// contributes no items. A fetch failure on the first page is fatal (there is
// nothing to extract), on later pages it ends pagination. The store is
// finalized before Run returns, including on early pagination stops.
func (o *Orchestrator) Run(ctx context.Context, startURL, instruction string, store pagemine.ResultStore, opts Options) (*Result, error) {
	if startURL == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "url required")
	}
	if instruction == "" {
		return nil, pagemine.Errorf(pagemine.EINVALID, "instruction required")
	}
	if store == nil {
		return nil, pagemine.Errorf(pagemine.EINVALID, "store required")
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	if opts.Progress != nil {
		opts.Progress(ProgressEvent{Type: ProgressStarted, URL: startURL})
	}

	visited := bloom.NewVisitedSet(expectedPages, falsePositiveRate)
	visited.Visit(startURL)
	contentHashes := make(map[uint64]bool)

	var collected []pagemine.Item
	pages := 0
	pageURL := startURL

	for page := 1; page <= maxPages; page++ {
		result, err := o.fetchPage(ctx, pageURL, opts.Fetch)
		if err != nil {
			logger.Warn("page fetch failed", "page", page, "url", pageURL, "err", err)
			if opts.Progress != nil {
				opts.Progress(ProgressEvent{Type: ProgressPageFailed, Page: page, URL: pageURL, Error: err})
			}
			if page == 1 {
				return nil, err
			}
			break
		}
		// Repeated content under a different URL means the site is serving
		// the same page again; stop before extracting duplicates.
		hash := xxhash.Sum64String(result.Markdown)
		if contentHashes[hash] {
			logger.Info("repeated page content, stopping pagination", "page", page, "url", pageURL)
			break
		}
		contentHashes[hash] = true
		pages++

		header := fmt.Sprintf("==== PAGE %d ====\nSOURCE URL: %s\n\n", page, result.URL)
		if err := store.AppendContent(header + result.Markdown); err != nil {
			logger.Warn("content append failed", "page", page, "err", err)
		}

		items, err := o.Pipeline.Run(ctx, result.Markdown, instruction, pipeline.Options{
			Schema:       opts.Schema,
			SplitPattern: opts.SplitPattern,
			Existing:     collected,
			Progress: func(percent int) {
				if opts.Progress != nil {
					opts.Progress(ProgressEvent{Type: ProgressBatch, Page: page, URL: pageURL, Percent: percent})
				}
			},
			OnChunk: func(chunk []pagemine.Item) {
				if err := store.AppendData(chunk); err != nil {
					logger.Warn("data append failed", "page", page, "err", err)
				}
			},
		})
		if err != nil {
			return nil, err
		}
		collected = append(collected, items...)

		logger.Info("page processed", "page", page, "url", result.URL, "items", len(items))
		if opts.Progress != nil {
			opts.Progress(ProgressEvent{Type: ProgressPageCompleted, Page: page, URL: result.URL, Items: len(items)})
		}

		if page == maxPages {
			break
		}
		next, err := goquery.NextURL(result.HTML, opts.NextSelector, result.URL)
		if err != nil || next == "" {
			break
		}
		if visited.Seen(next) {
			logger.Info("next page already visited, stopping pagination", "url", next)
			break
		}
		visited.Visit(next)
		pageURL = next
	}

	files, err := store.Finalize()
	if err != nil {
		return nil, err
	}

	if opts.Progress != nil {
		opts.Progress(ProgressEvent{Type: ProgressFinished, Page: pages, Items: len(collected)})
	}

	return &Result{
		Pages: pages,
		Items: collected,
		Files: files,
	}, nil
}

// fetchPage rate-limits and fetches a single page with retry.
func (o *Orchestrator) fetchPage(ctx context.Context, pageURL string, opts pagemine.FetchOptions) (*pagemine.FetchResult, error) {
	if o.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return nil, pagemine.Errorf(pagemine.EINVALID, "invalid page URL: %v", err)
		}
		if err := o.RateLimiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}

	delays := o.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetryDelays(ctx, pageURL, opts, o.Fetcher.Fetch, nil, delays)
}
