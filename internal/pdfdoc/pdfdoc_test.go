package pdfdoc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/markscrivo/crewscrape/internal/browser"
)

type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) FetchBinary(_ context.Context, url string) ([]byte, string, error) {
	s.calls = append(s.calls, url)
	body, ok := s.pages[url]
	if !ok {
		return nil, "", errors.New("unexpected status: 404")
	}
	ct := "application/pdf"
	if strings.Contains(body, "<html") {
		ct = "text/html"
	}
	return []byte(body), ct, nil
}

type stubViewer struct {
	res    browser.ViewerResult
	err    error
	called bool
}

func (s *stubViewer) ExtractPDFViewerText(_ context.Context, _ string) (browser.ViewerResult, error) {
	s.called = true
	return s.res, s.err
}

func TestChainEscalatesNestedWrapperToViewer(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://x.com/box.pdf":   `<html><iframe src="/inner.pdf"></iframe></html>`,
		"https://x.com/inner.pdf": `<html><body>another viewer</body></html>`,
	}}
	viewer := &stubViewer{res: browser.ViewerResult{Text: "Officials\nReferee: John Smith"}}
	e := &Extractor{Downloader: fetcher, Viewer: viewer}

	text, err := e.ExtractText(context.Background(), "https://x.com/box.pdf")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !viewer.called {
		t.Fatal("nested wrapper should escalate to the browser viewer")
	}
	if !strings.Contains(text, "John Smith") {
		t.Fatalf("text = %q", text)
	}
	// Both the wrapper and the embedded URL must have been downloaded.
	if len(fetcher.calls) < 2 || fetcher.calls[1] != "https://x.com/inner.pdf" {
		t.Fatalf("calls = %v", fetcher.calls)
	}
}

func TestChainWrapperWithoutEmbeddedURLEscalates(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://x.com/box.pdf": `<html><body>viewer with no links</body></html>`,
	}}
	viewer := &stubViewer{res: browser.ViewerResult{Text: "Referee: A. Body"}}
	e := &Extractor{Downloader: fetcher, Viewer: viewer}

	if _, err := e.ExtractText(context.Background(), "https://x.com/box.pdf"); err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !viewer.called {
		t.Fatal("viewer should be reached")
	}
}

func TestChainDownloadFailureEscalatesThenFails(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{}}
	viewer := &stubViewer{err: errors.New("chrome crashed")}
	e := &Extractor{Downloader: fetcher, Viewer: viewer}

	_, err := e.ExtractText(context.Background(), "https://x.com/missing.pdf")
	if err == nil {
		t.Fatal("exhausted chain should fail")
	}
	if !viewer.called {
		t.Fatal("viewer should have been attempted")
	}
}

func TestChainViewerEmbedSrcRedownload(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://x.com/box.pdf":   `<html><body>wrapper, nothing embedded</body></html>`,
		"https://cdn.x.com/a.pdf": `<html>still html</html>`,
	}}
	viewer := &stubViewer{res: browser.ViewerResult{EmbedSrc: "https://cdn.x.com/a.pdf"}}
	e := &Extractor{Downloader: fetcher, Viewer: viewer}

	// Embed src turns out to be HTML too and the viewer scraped no text:
	// the chain is exhausted.
	if _, err := e.ExtractText(context.Background(), "https://x.com/box.pdf"); err == nil {
		t.Fatal("expected chain exhaustion")
	}
}

func TestChainWithoutViewerFailsCleanly(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://x.com/box.pdf": `<html><body>wrapper</body></html>`,
	}}
	e := &Extractor{Downloader: fetcher}
	if _, err := e.ExtractText(context.Background(), "https://x.com/box.pdf"); err == nil {
		t.Fatal("no viewer configured should fail, not panic")
	}
}
