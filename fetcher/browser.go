package fetcher

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserFetcher renders a page in headless Chromium and returns the DOM as
// HTML. Used only when the plain HTTP fetch hits a bot wall; launching a
// browser is expensive, so it happens once, lazily.
type BrowserFetcher struct {
	timeout time.Duration

	once    sync.Once
	browser *rod.Browser
	initErr error
}

// NewBrowserFetcher prepares a lazy browser fetcher.
func NewBrowserFetcher(timeout time.Duration) *BrowserFetcher {
	return &BrowserFetcher{timeout: timeout}
}

func (b *BrowserFetcher) init() {
	err := rod.Try(func() {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Leakless(false)

		// use system Chromium in containers, auto-detect elsewhere
		if _, statErr := os.Stat("/usr/bin/chromium-browser"); statErr == nil {
			l = l.Bin("/usr/bin/chromium-browser")
		}

		controlURL := l.MustLaunch()
		b.browser = rod.New().ControlURL(controlURL).MustConnect()
	})
	if err != nil {
		b.initErr = fmt.Errorf("launch browser: %w", err)
		log.Printf("Browser fallback unavailable: %v", b.initErr)
	}
}

// FetchHTML navigates to the URL, waits for the load event and returns the
// rendered document.
func (b *BrowserFetcher) FetchHTML(url string) (string, error) {
	b.once.Do(b.init)
	if b.initErr != nil {
		return "", b.initErr
	}

	var html string
	err := rod.Try(func() {
		page := b.browser.MustPage(url).Timeout(b.timeout)
		defer page.MustClose()
		page.MustWaitLoad()
		html = page.MustHTML()
	})
	if err != nil {
		return "", fmt.Errorf("browser fetch %s: %w", url, err)
	}

	return html, nil
}

// Close shuts the browser down if it was ever launched.
func (b *BrowserFetcher) Close() {
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			log.Printf("Failed to close browser: %v", err)
		}
	}
}
