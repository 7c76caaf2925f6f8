package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/extract"
)

// ViewerResult is what browser-based PDF extraction recovered. Exactly one
// of EmbedSrc or Text is expected to be useful: when the viewer page embeds
// the document via iframe/embed/object, re-downloading that src as a real
// PDF beats scraping rendered glyphs, so the src is surfaced and text
// scraping is skipped.
type ViewerResult struct {
	// EmbedSrc is the PDF URL found inside an iframe/embed/object element.
	EmbedSrc string
	// Text is the scraped text layer or page text, when no embed src exists.
	Text string
}

// viewer readiness is not signaled by any DOM event worth waiting on, so a
// fixed initialization delay is used before probing.
const viewerInitDelay = 3 * time.Second

const embedSrcJS = `(() => {
	const els = document.querySelectorAll('iframe, embed, object');
	for (const el of els) {
		const src = el.src || el.data || '';
		if (src && src.toLowerCase().includes('.pdf')) return src;
	}
	return '';
})()`

const textLayerJS = `(() => {
	const layers = document.querySelectorAll('.textLayer');
	if (!layers.length) return '';
	let out = [];
	for (const l of layers) out.push(l.innerText || l.textContent || '');
	return out.join('\n');
})()`

// frameTextLayerJS probes same-origin iframes; cross-origin frames throw on
// contentDocument access and are skipped.
const frameTextLayerJS = `(() => {
	let out = [];
	for (const f of document.querySelectorAll('iframe')) {
		try {
			const doc = f.contentDocument;
			if (!doc) continue;
			const layers = doc.querySelectorAll('.textLayer');
			for (const l of layers) out.push(l.innerText || l.textContent || '');
			if (!layers.length && doc.body) out.push(doc.body.innerText || '');
		} catch (e) {}
	}
	return out.join('\n');
})()`

const bodyTextJS = `document.body ? (document.body.innerText || '') : ''`

// ExtractPDFViewerText loads a PDF URL in a fresh browser context and works
// down the viewer-extraction ladder: embedded PDF element src first (caller
// re-downloads it), then PDF.js text layers on the page, then text layers in
// same-origin frames, then raw body text gated against boilerplate, then a
// keyword-gated visible-text tree walk of the full DOM.
func (b *Browser) ExtractPDFViewerText(ctx context.Context, url string) (ViewerResult, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.NavTimeout)
	defer cancelTimeout()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-done:
		}
	}()

	var embedSrc, layerText, frameText, bodyText, outerHTML string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(viewerInitDelay),
		chromedp.Evaluate(embedSrcJS, &embedSrc),
		chromedp.Evaluate(textLayerJS, &layerText),
		chromedp.Evaluate(frameTextLayerJS, &frameText),
		chromedp.Evaluate(bodyTextJS, &bodyText),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return ViewerResult{}, ctx.Err()
		}
		return ViewerResult{}, fmt.Errorf("viewer load %s: %w", url, err)
	}

	if s := strings.TrimSpace(embedSrc); s != "" {
		log.Debug().Str("url", url).Str("embed_src", s).Msg("pdf viewer exposes embedded document")
		return ViewerResult{EmbedSrc: s}, nil
	}
	if s := strings.TrimSpace(layerText); s != "" {
		return ViewerResult{Text: s}, nil
	}
	if s := strings.TrimSpace(frameText); s != "" && !extract.DominatedByBoilerplate(s) {
		return ViewerResult{Text: s}, nil
	}
	if s := strings.TrimSpace(bodyText); s != "" && !extract.DominatedByBoilerplate(s) {
		return ViewerResult{Text: s}, nil
	}
	// Last resort: visible-text walk of the rendered DOM, accepted only
	// when it plausibly contains officiating content at all.
	if s := extract.VisibleText([]byte(outerHTML)); extract.HasOfficiatingKeyword(s) {
		return ViewerResult{Text: s}, nil
	}
	return ViewerResult{}, fmt.Errorf("viewer load %s: no extractable text", url)
}
