// Package rod fetches rendered pages using Chrome browser automation.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/pagemine"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// defaultScrollDelay is the pause between scroll passes when the caller
// requests scrolling without a delay.
const defaultScrollDelay = 500 * time.Millisecond

// Ensure Fetcher implements pagemine.Fetcher at compile time.
var _ pagemine.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered pages using a managed Chrome browser and mines
// them into markdown via the given extractor and converter.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager   *BrowserManager
	extractor pagemine.Extractor
	converter pagemine.Converter
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(extractor pagemine.Extractor, converter pagemine.Converter, opts ...ManagerOption) (*Fetcher, error) {
	manager, err := NewBrowserManager(opts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager, extractor: extractor, converter: converter}, nil
}

// Fetch navigates to the URL, waits for content to render, and returns the
// page in both raw HTML and markdown form.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts pagemine.FetchOptions) (*pagemine.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	if opts.WaitSelector != "" {
		el, err := page.Element(opts.WaitSelector)
		if err != nil {
			return nil, err
		}
		if err := el.WaitVisible(); err != nil {
			return nil, err
		}
	}

	if err := f.scroll(ctx, page, opts); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, err
	}
	f.manager.PageDone()

	finalURL := url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	extracted, err := f.extractor.Extract(html)
	if err != nil {
		return nil, err
	}
	markdown, err := f.converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, err
	}

	return &pagemine.FetchResult{
		URL:      finalURL,
		Title:    extracted.Title,
		HTML:     html,
		Markdown: markdown,
	}, nil
}

// scroll performs the requested scroll-to-bottom passes to trigger lazily
// loaded content.
func (f *Fetcher) scroll(ctx context.Context, page *rod.Page, opts pagemine.FetchOptions) error {
	if opts.ScrollDepth <= 0 {
		return nil
	}
	delay := opts.ScrollDelay
	if delay <= 0 {
		delay = defaultScrollDelay
	}
	for i := 0; i < opts.ScrollDepth; i++ {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
