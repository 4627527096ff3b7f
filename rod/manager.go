package rod

import (
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// DefaultPagesPerBrowser is the default number of fetched pages before the
// browser is recycled.
const DefaultPagesPerBrowser = 75

// BrowserManager owns the headless Chrome instance behind a scrape session
// and recycles it after a fixed number of page fetches. A long paginated
// crawl keeps one browser alive for hundreds of navigations, and Chrome's
// memory footprint creeps upward across them without returning to baseline,
// so the manager swaps in a fresh browser once the fetch count reaches the
// threshold.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	served   int
	perBrow  int
	closed   bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithPagesPerBrowser sets how many page fetches a browser serves before it
// is recycled. Defaults to DefaultPagesPerBrowser.
func WithPagesPerBrowser(n int) ManagerOption {
	return func(m *BrowserManager) {
		m.perBrow = n
	}
}

// NewBrowserManager launches a headless Chrome browser ready for fetching.
// Close must be called when the manager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	m := &BrowserManager{
		perBrow: DefaultPagesPerBrowser,
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.launch(); err != nil {
		return nil, err
	}

	return m, nil
}

// Browser returns the browser to fetch the next page with, recycling first
// if the current one has served its quota. Callers report each completed
// fetch through PageDone.
func (m *BrowserManager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.served >= m.perBrow {
		m.recycle()
	}

	return m.browser
}

// PageDone records one completed page fetch against the recycling quota.
func (m *BrowserManager) PageDone() {
	m.mu.Lock()
	m.served++
	m.mu.Unlock()
}

// Close releases browser resources. Close is safe to call multiple times.
func (m *BrowserManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	return m.shutdown()
}

// launch starts a new browser instance. The flags keep Chrome from
// throttling timers and renderers while a scrape runs unattended in the
// background.
func (m *BrowserManager) launch() error {
	lnchr := launcher.New().
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("disable-dev-shm-usage").
		Set("disable-hang-monitor").
		Leakless(true).
		Headless(true)

	u, err := lnchr.Launch()
	if err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return fmt.Errorf("connecting to browser: %w", err)
	}

	m.browser = browser
	m.launcher = lnchr
	return nil
}

// shutdown closes the current browser and launcher.
// Must be called with mu held.
func (m *BrowserManager) shutdown() error {
	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	if m.launcher != nil {
		m.launcher.Kill()
		m.launcher = nil
	}
	return err
}

// recycle replaces the browser with a fresh instance. If the new launch
// fails the old browser is kept; a mid-crawl fetch against a tired browser
// beats aborting the run.
// Must be called with mu held.
func (m *BrowserManager) recycle() {
	oldBrowser := m.browser
	oldLauncher := m.launcher
	m.browser = nil
	m.launcher = nil

	if err := m.launch(); err != nil {
		m.browser = oldBrowser
		m.launcher = oldLauncher
		return
	}

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	if oldLauncher != nil {
		oldLauncher.Kill()
	}
	m.served = 0
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (m *BrowserManager) LauncherPID() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.launcher == nil {
		return 0
	}
	return m.launcher.PID()
}
