// Package fetch - browser.go provides headless browser rendering for
// JavaScript-heavy signal pages.
package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the minimum extracted text length to consider a plain
// HTTP fetch successful. Shorter content usually means a client-rendered page.
const MinContentLength = 500

// ShouldUseBrowser returns true if the extracted text is too short,
// indicating the page is likely a JavaScript-rendered SPA.
func ShouldUseBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// WithBrowser renders a page in a headless browser and returns the rendered
// HTML. Requires Chrome/Chromium to be installed on the system.
func WithBrowser(ctx context.Context, url string, timeout time.Duration, verbose bool) (string, error) {
	if verbose {
		log.Printf("[BROWSER] Starting headless browser for: %s", url)
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give client-side rendering a moment to populate the page
		chromedp.Sleep(3*time.Second),
		// Dismiss common cookie banners; ignore if none are present
		chromedp.ActionFunc(func(ctx context.Context) error {
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"], button:contains("OK"), button:contains("Accept")`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)

	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}

	if verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}

// BrowserSimple is a simplified version that uses the default timeout.
func BrowserSimple(ctx context.Context, url string, verbose bool) (string, error) {
	return WithBrowser(ctx, url, 30*time.Second, verbose)
}
