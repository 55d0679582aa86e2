package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"time"

	"dropwatch/config"
)

var domainPattern = regexp.MustCompile(`https?://[^/]+`)

// Fetcher downloads product pages with rotating browser-like headers and a
// small retry budget. It is the only blocking collaborator; everything
// downstream works on the returned body in memory.
type Fetcher struct {
	client  *http.Client
	cfg     config.FetchConfig
	botWall *BotWallDetector
	browser *BrowserFetcher
}

// New builds a fetcher from configuration. The browser fallback is only
// wired when enabled; it launches lazily on first use.
func New(cfg config.FetchConfig) *Fetcher {
	f := &Fetcher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		botWall: NewBotWallDetector(),
	}
	if cfg.UseBrowserFallback {
		f.browser = NewBrowserFetcher(cfg.Timeout)
	}
	return f
}

// Close releases the browser, if one was ever launched.
func (f *Fetcher) Close() {
	if f.browser != nil {
		f.browser.Close()
	}
}

// Get fetches a URL and returns the body. Failed attempts back off linearly
// (2s, 3s, ...) up to the configured retry budget. When the response looks
// like a bot wall and the browser fallback is enabled, the page is re-fetched
// through the headless browser.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= f.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(2+attempt-1) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		body, err := f.getOnce(ctx, url)
		if err != nil {
			lastErr = err
			log.Printf("Fetch attempt %d failed for %s: %v", attempt+1, url, err)
			continue
		}

		if blocked, reason := f.botWall.Detect(body); blocked {
			if f.browser != nil {
				log.Printf("Bot wall detected for %s (%s), retrying via browser", url, reason)
				return f.browser.FetchHTML(url)
			}
			lastErr = fmt.Errorf("bot wall detected: %s", reason)
			continue
		}

		return body, nil
	}

	return "", fmt.Errorf("all fetch attempts failed for %s: %w", url, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}

	for k, v := range f.headers(url) {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return string(body), nil
}

// headers builds a browser-like header set with a random User-Agent and the
// page's own domain as Referer.
func (f *Fetcher) headers(url string) map[string]string {
	h := map[string]string{
		"Accept-Language": "en-US,en;q=0.9,en-IN;q=0.8",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Connection":      "keep-alive",
		"Referer":         "https://www.google.com/",
	}
	if len(f.cfg.UserAgents) > 0 {
		h["User-Agent"] = f.cfg.UserAgents[rand.Intn(len(f.cfg.UserAgents))]
	}
	if domain := domainPattern.FindString(url); domain != "" {
		h["Referer"] = domain
	}
	return h
}
