// Package fetch downloads binary artifacts (PDF boxscores, mostly) over
// plain HTTP. Pages that need rendering go through internal/browser instead.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Athletics CDNs reject default Go user agents outright, so downloads
// present a browser-like one.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

const defaultTimeout = 30 * time.Second

// Downloader wraps a resty client with the download policy shared by the
// PDF chain: browser UA, bounded timeout, limited retry on transient errors.
type Downloader struct {
	client *resty.Client
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
}

// NewDownloader returns a Downloader with the given per-request timeout
// (zero means the 30s default).
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept", "application/pdf,text/html,*/*").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	return &Downloader{client: c, MaxAttempts: 2}
}

// FetchBinary GETs a URL and returns the raw body plus the response
// Content-Type. 5xx responses and deadline errors are retried once with a
// short delay; 4xx responses fail immediately.
func (d *Downloader) FetchBinary(ctx context.Context, url string) ([]byte, string, error) {
	attempts := d.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, "", ctx.Err()
			case <-time.After(time.Duration(i) * 500 * time.Millisecond):
			}
		}
		body, ct, err := d.tryOnce(ctx, url)
		if err == nil {
			return body, ct, nil
		}
		lastErr = err
		if !isTransient(err) {
			return nil, "", err
		}
		log.Debug().Str("url", url).Int("attempt", i+1).Err(err).Msg("binary fetch retry")
	}
	return nil, "", lastErr
}

func (d *Downloader) tryOnce(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := d.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", url, err)
	}
	status := resp.StatusCode()
	if status >= 500 {
		return nil, "", fmt.Errorf("server error: %d", status)
	}
	if status < 200 || status > 299 {
		return nil, "", fmt.Errorf("unexpected status: %d", status)
	}
	ct := resp.Header().Get("Content-Type")
	return resp.Body(), ct, nil
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

// IsPDFContentType reports whether a Content-Type header claims PDF.
func IsPDFContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "application/pdf") || strings.HasPrefix(ct, "application/x-pdf")
}
