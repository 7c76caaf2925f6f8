package pdfdoc

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SniffHTML reports whether a response that was supposed to be a PDF is
// actually an HTML viewer wrapper. Sidearm stat sites serve these
// routinely: the .pdf URL returns a page that embeds the real document.
func SniffHTML(b []byte) bool {
	head := b
	if len(head) > 1024 {
		head = head[:1024]
	}
	lower := bytes.ToLower(bytes.TrimSpace(head))
	return bytes.Contains(lower, []byte("<html")) || bytes.HasPrefix(lower, []byte("<!doctype html"))
}

// The regex layers cover markup goquery cannot see: CSS url() references
// and bare document paths in scripts.
var (
	cssURLRe   = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+\.pdf[^'")]*)['"]?\s*\)`)
	docPathRe  = regexp.MustCompile(`(?i)["'(]([^"'()\s]*/documents/[^"'()\s]*\.pdf[^"'()\s]*)["')]`)
	srcAttrRe  = regexp.MustCompile(`(?i)src\s*=\s*["']([^"']*\.pdf[^"']*)["']`)
	hrefAttrRe = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']*\.pdf[^"']*)["']`)
)

// FindEmbeddedPDFURL scans wrapper HTML for the real PDF URL. Attribute
// scanning goes through goquery first; the regex set mops up CSS and script
// references. Relative URLs are resolved against the wrapper's own URL.
func FindEmbeddedPDFURL(html string, wrapperURL string) string {
	base, err := url.Parse(wrapperURL)
	if err != nil {
		base = nil
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		var found string
		doc.Find("iframe[src], embed[src], object[data], a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range []string{"src", "data", "href"} {
				if v, ok := s.Attr(attr); ok && looksLikePDFURL(v) {
					found = v
					return false
				}
			}
			return true
		})
		if found != "" {
			return resolveAgainst(base, found)
		}
	}

	for _, re := range []*regexp.Regexp{srcAttrRe, hrefAttrRe, cssURLRe, docPathRe} {
		if m := re.FindStringSubmatch(html); len(m) > 1 {
			return resolveAgainst(base, m[1])
		}
	}
	return ""
}

func looksLikePDFURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.Contains(lower, ".pdf")
}

func resolveAgainst(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if base == nil {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}
