package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/chromedp/chromedp"
)

// Renderer returns fully-rendered HTML for a URL
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// browserUserAgents are rotated across fallback fetch attempts
var browserUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// PageFetcher renders pages in a headless browser, scrolling until the page
// height stabilizes so that lazily-loaded listings are present. When the
// browser fails it degrades to a plain HTTP GET and proceeds without
// rendering.
type PageFetcher struct {
	httpClient     *http.Client
	renderDisabled bool
	renderTimeout  time.Duration
	scrollDelay    time.Duration
	settleDelay    time.Duration
	stableRounds   int
	attempts       uint
}

// NewPageFetcher creates a fetcher with rendering enabled
func NewPageFetcher(renderTimeout time.Duration) *PageFetcher {
	if renderTimeout <= 0 {
		renderTimeout = 90 * time.Second
	}
	return &PageFetcher{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		renderTimeout: renderTimeout,
		scrollDelay:   2 * time.Second,
		settleDelay:   5 * time.Second,
		stableRounds:  3,
		attempts:      2,
	}
}

// NewPlainFetcher creates a fetcher that skips browser rendering entirely
func NewPlainFetcher() *PageFetcher {
	f := NewPageFetcher(0)
	f.renderDisabled = true
	return f
}

// Render fetches rendered HTML for a URL. Browser rendering is retried a
// bounded number of times; on exhaustion the plain GET result is returned
// instead, so a render failure never fails the page outright.
func (f *PageFetcher) Render(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}

	if !f.renderDisabled {
		var pageHTML string
		err := retry.Do(
			func() error {
				var err error
				pageHTML, err = f.renderOnce(ctx, url)
				return err
			},
			retry.Context(ctx),
			retry.Attempts(f.attempts),
			retry.Delay(1*time.Second),
		)
		if err == nil {
			return pageHTML, nil
		}
		log.Printf("[debug] browser render failed for %s, falling back to plain fetch: %v", url, err)
	}

	return f.plainFetch(ctx, url)
}

// renderOnce runs a single headless-browser session against the URL
func (f *PageFetcher) renderOnce(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(browserUserAgents[0]),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, f.renderTimeout)
	defer cancelTimeout()

	var pageHTML string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(f.settleDelay),
		chromedp.ActionFunc(f.scrollUntilStable),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}
	if pageHTML == "" {
		return "", fmt.Errorf("rendering %s: empty document", url)
	}
	return pageHTML, nil
}

// scrollUntilStable scrolls the page until its height stops growing, so
// infinite-scroll listings finish loading before the HTML is captured.
func (f *PageFetcher) scrollUntilStable(ctx context.Context) error {
	prevHeight := -1
	stable := 0

	for stable < f.stableRounds {
		var height int
		err := chromedp.Evaluate(`window.scrollBy(0, 5000); document.body.scrollHeight`, &height).Do(ctx)
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.scrollDelay):
		}

		if height == prevHeight {
			stable++
		} else {
			stable = 0
		}
		prevHeight = height
	}
	return nil
}

// plainFetch is the reduced-capability fallback: a plain GET with a
// realistic browser user agent.
func (f *PageFetcher) plainFetch(ctx context.Context, url string) (string, error) {
	var body string
	attempt := 0
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			req.Header.Set("User-Agent", browserUserAgents[attempt%len(browserUserAgents)])
			attempt++
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Language", "en-US,en;q=0.9")

			resp, err := f.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unexpected status %d", resp.StatusCode)
			}

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			body = string(data)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(1*time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	return body, nil
}
