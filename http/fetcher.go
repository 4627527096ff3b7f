// Package http provides an HTTP-based implementation of pagemine.Fetcher
// for scraping static sites that don't require JavaScript rendering.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/pagemine"
)

// DefaultFetchTimeout is the default timeout for HTTP requests. A static
// page that takes longer than this to arrive is not worth waiting for.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements pagemine.Fetcher at compile time.
var _ pagemine.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page content using plain HTTP requests. Unlike
// rod.Fetcher it does not execute JavaScript, so FetchOptions that assume a
// live page (WaitSelector, ScrollDepth) are ignored.
type Fetcher struct {
	client    *http.Client
	extractor pagemine.Extractor
	converter pagemine.Converter
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher. The extractor isolates the
// main content of each page and the converter turns it into Markdown.
func NewFetcher(extractor pagemine.Extractor, converter pagemine.Converter, opts ...Option) *Fetcher {
	f := &Fetcher{
		extractor: extractor,
		converter: converter,
		timeout:   DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the page at url and returns its raw HTML alongside the
// Markdown rendering of its main content. The returned URL reflects any
// redirects the server performed.
func (f *Fetcher) Fetch(ctx context.Context, url string, _ pagemine.FetchOptions) (*pagemine.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, pagemine.Errorf(pagemine.EINVALID, "invalid URL %q: %v", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pagemine.Errorf(pagemine.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, pagemine.Errorf(pagemine.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pagemine.Errorf(pagemine.EUNAVAILABLE, "read %s: %v", url, err)
	}

	rawHTML := string(body)

	extracted, err := f.extractor.Extract(rawHTML)
	if err != nil {
		return nil, err
	}

	markdown, err := f.converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	return &pagemine.FetchResult{
		URL:      resp.Request.URL.String(),
		Title:    extracted.Title,
		HTML:     rawHTML,
		Markdown: markdown,
	}, nil
}

// Close is a no-op; plain HTTP holds no browser resources.
func (f *Fetcher) Close() error {
	return nil
}
