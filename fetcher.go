package pagemine

import (
	"context"
	"time"
)

// FetchResult holds a fetched page in both its raw and mined forms.
type FetchResult struct {
	// URL is the final URL after any redirects.
	URL string

	// Title is the page title extracted from metadata.
	Title string

	// HTML is the rendered page HTML, used for pagination link discovery.
	HTML string

	// Markdown is the page's main content converted to markdown, with
	// boilerplate (nav, footer, sidebar, ads) removed.
	Markdown string
}

// FetchOptions configures a single page fetch.
type FetchOptions struct {
	// WaitSelector, when non-empty, is a CSS selector the fetcher waits for
	// before reading the page.
	WaitSelector string

	// ScrollDepth is the number of scroll-to-bottom passes used to trigger
	// lazily loaded content. Zero disables scrolling.
	ScrollDepth int

	// ScrollDelay is the pause between scroll passes.
	ScrollDelay time.Duration
}

// Fetcher retrieves rendered pages from URLs and converts them to markdown.
// Implementations may use browser automation to handle JavaScript-rendered
// content.
type Fetcher interface {
	// Fetch navigates to the URL, waits for content to render, and returns
	// the page. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error)

	// Close releases browser resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

