// Package browser is the headless-rendering collaborator. It wraps chromedp
// behind a small Fetcher interface: give it a URL and an optional wait
// condition, get back rendered HTML, the page title, and optionally a
// screenshot. Browser contexts are created per request and never shared, so
// cookies and sessions cannot leak across concurrent scrapes.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Page is the rendered result of one navigation.
type Page struct {
	URL        string
	HTML       string
	Title      string
	Screenshot []byte
}

// FetchOptions tune one navigation.
type FetchOptions struct {
	// WaitSelector, when non-empty, is waited on (visible) before the page
	// counts as rendered. When empty a short settle delay is used instead,
	// since most athletics sites hydrate schedules client-side.
	WaitSelector string
	// Screenshot captures a full-viewport PNG alongside the HTML.
	Screenshot bool
	// Attempts overrides the fetcher's retry budget for this call. Zero
	// means use the fetcher default.
	Attempts int
}

// Fetcher renders pages. Implementations must be safe for sequential reuse
// within one scrape and must isolate state between instances.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, opts FetchOptions) (*Page, error)
}

// settleDelay is applied when no wait selector is configured.
const settleDelay = 2 * time.Second

// Browser owns one Chrome process allocator. Contexts (profiles, cookies)
// are per-call; the process is shared.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	// NavTimeout bounds one navigation including readiness waiting.
	NavTimeout time.Duration
	// MaxAttempts bounds FetchPage retries, including the first attempt.
	MaxAttempts int

	// navigate and backoff are swapped in tests; nil means fetchOnce and
	// the package Backoff schedule.
	navigate func(ctx context.Context, url string, opts FetchOptions) (*Page, error)
	backoff  func(attempt int) time.Duration
}

// New starts a Chrome allocator. Close must be called when done.
func New(headless bool, navTimeout time.Duration) (*Browser, error) {
	if navTimeout <= 0 {
		navTimeout = 60 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.WindowSize(1920, 1080),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		NavTimeout:  navTimeout,
		MaxAttempts: 3,
	}, nil
}

// Close tears down the allocator and any Chrome it started.
func (b *Browser) Close() error {
	if b.allocCancel != nil {
		b.allocCancel()
	}
	return nil
}

// FetchPage navigates in a fresh browser context, retrying with exponential
// backoff (1s base, doubling, 10s cap) on failure.
func (b *Browser) FetchPage(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	var lastErr error
	attempts := b.MaxAttempts
	if opts.Attempts > 0 {
		attempts = opts.Attempts
	}
	if attempts < 1 {
		attempts = 1
	}
	navigate := b.navigate
	if navigate == nil {
		navigate = b.fetchOnce
	}
	backoff := b.backoff
	if backoff == nil {
		backoff = Backoff
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		page, err := navigate(ctx, url, opts)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		delay := backoff(attempt)
		log.Warn().Str("url", url).Int("attempt", attempt).Dur("backoff", delay).Err(err).Msg("page fetch retry")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (b *Browser) fetchOnce(ctx context.Context, url string, opts FetchOptions) (*Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.NavTimeout)
	defer cancelTimeout()

	// Honor caller cancellation without tying tab lifetime to caller ctx.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()

	tasks := chromedp.Tasks{chromedp.Navigate(url)}
	if opts.WaitSelector != "" {
		tasks = append(tasks, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery))
	} else {
		tasks = append(tasks, chromedp.Sleep(settleDelay))
	}

	var html, title string
	tasks = append(tasks,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	var shot []byte
	if opts.Screenshot {
		tasks = append(tasks, chromedp.CaptureScreenshot(&shot))
	}

	if err := chromedp.Run(tabCtx, tasks); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render: %w", err)
	}
	if html == "" {
		return nil, errors.New("render: empty document")
	}
	return &Page{URL: url, HTML: html, Title: title, Screenshot: shot}, nil
}

// Backoff returns the delay before retry attempt+1: 1s doubling per
// attempt, capped at 10s.
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Second << (attempt - 1)
	if d > 10*time.Second {
		return 10 * time.Second
	}
	return d
}
