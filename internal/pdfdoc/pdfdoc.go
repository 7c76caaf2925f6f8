// Package pdfdoc turns a PDF boxscore URL into plain text through a layered
// recovery chain, then parses officials out of that text with regexes. The
// chain exists because athletics sites rarely serve the PDF straight: the
// URL may answer with an HTML viewer wrapper, the wrapper may nest another
// wrapper, and the parsers themselves fail on some generator output.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/browser"
)

// ErrNotPDF marks a download that produced HTML where PDF bytes were
// expected, after the embedded-URL rescue also failed.
var ErrNotPDF = errors.New("url did not yield a pdf document")

// BinaryFetcher is the download dependency (satisfied by fetch.Downloader).
type BinaryFetcher interface {
	FetchBinary(ctx context.Context, url string) ([]byte, string, error)
}

// ViewerExtractor is the browser-automation escalation (satisfied by
// browser.Browser). Nil disables the last-resort layer.
type ViewerExtractor interface {
	ExtractPDFViewerText(ctx context.Context, url string) (browser.ViewerResult, error)
}

// Extractor executes the recovery chain.
type Extractor struct {
	Downloader BinaryFetcher
	Viewer     ViewerExtractor
}

// ExtractText recovers the plain text of the document behind pdfURL.
// Layers, each attempted only when the prior fails:
//  1. direct download
//  2. HTML-wrapper sniff + embedded-URL rescan
//  3. re-download of the embedded URL (nested wrapper escalates)
//  4. dual-parser text extraction
//  5. browser-automation viewer scraping
func (e *Extractor) ExtractText(ctx context.Context, pdfURL string) (string, error) {
	text, directErr := e.tryDirect(ctx, pdfURL)
	if directErr == nil {
		return text, nil
	}
	log.Debug().Str("url", pdfURL).Err(directErr).Msg("direct pdf extraction failed, escalating to browser")

	text, viewerErr := e.tryViewer(ctx, pdfURL)
	if viewerErr == nil {
		return text, nil
	}
	return "", fmt.Errorf("pdf chain exhausted for %s: direct: %v; viewer: %w", pdfURL, directErr, viewerErr)
}

func (e *Extractor) tryDirect(ctx context.Context, pdfURL string) (string, error) {
	if e.Downloader == nil {
		return "", errors.New("no downloader configured")
	}
	body, _, err := e.Downloader.FetchBinary(ctx, pdfURL)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	if !SniffHTML(body) {
		return textFromPDF(body)
	}

	// The "PDF" is an HTML viewer wrapper; rescue via embedded URL.
	embedded := FindEmbeddedPDFURL(string(body), pdfURL)
	if embedded == "" {
		return "", fmt.Errorf("%w: wrapper html with no embedded url", ErrNotPDF)
	}
	log.Debug().Str("url", pdfURL).Str("embedded", embedded).Msg("pdf url wrapped in html viewer")
	body, _, err = e.Downloader.FetchBinary(ctx, embedded)
	if err != nil {
		return "", fmt.Errorf("download embedded: %w", err)
	}
	if SniffHTML(body) {
		// Nested wrapper: direct download cannot win, the browser can.
		return "", fmt.Errorf("%w: nested html wrapper", ErrNotPDF)
	}
	return textFromPDF(body)
}

func (e *Extractor) tryViewer(ctx context.Context, pdfURL string) (string, error) {
	if e.Viewer == nil {
		return "", errors.New("no browser viewer configured")
	}
	res, err := e.Viewer.ExtractPDFViewerText(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	if res.EmbedSrc != "" && e.Downloader != nil {
		// A fresh PDF from the embed src beats scraped glyphs.
		if body, _, err := e.Downloader.FetchBinary(ctx, res.EmbedSrc); err == nil && !SniffHTML(body) {
			if text, err := textFromPDF(body); err == nil {
				return text, nil
			}
		}
	}
	if res.Text != "" {
		return res.Text, nil
	}
	return "", errors.New("viewer produced no text")
}
