// Package extract converts rendered HTML into the plain text handed to the
// semantic engine and to the PDF-viewer fallback chain. Athletics pages bury
// schedule tables under heavy chrome, so the walker drops navigation,
// scripts, and obvious boilerplate containers before collecting text.
package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// skippedTags are subtrees that never carry schedule or officiating content.
var skippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"iframe":   true,
}

// Text extracts readable text from HTML, preferring <main> or <article> and
// falling back to <body>. Block elements produce line breaks so the
// downstream line-oriented officials parser sees one entry per line.
func Text(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	content := findFirst(node, "main")
	if content == nil {
		content = findFirst(node, "article")
	}
	if content == nil {
		content = findFirst(node, "body")
	}
	if content == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, content)
	return normalizeWhitespace(b.String())
}

// VisibleText walks the whole document collecting visible text nodes while
// excluding nav/header/footer/script/style subtrees. It is the tree-walk
// layer of the PDF-viewer fallback, where the usual content roots are
// useless because the viewer renders into arbitrary divs.
func VisibleText(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	var b strings.Builder
	collectText(&b, node)
	return normalizeWhitespace(b.String())
}

// Title returns the document title, or "".
func Title(input []byte) string {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return ""
	}
	head := findFirst(node, "head")
	if head == nil {
		return ""
	}
	t := findFirst(head, "title")
	if t == nil || t.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(t.FirstChild.Data)
}

// officiatingKeywords gate whether scraped text plausibly contains crew
// assignments at all.
var officiatingKeywords = []string{"referee", "official", "umpire", "judge"}

// HasOfficiatingKeyword reports whether text mentions any officiating role.
// Used as the content-validity gate on last-resort text scrapes.
func HasOfficiatingKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range officiatingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DominatedByBoilerplate reports whether scraped body text is mostly site
// chrome rather than game content. Sidearm sites title every page "Official
// Athletics Website", and a viewer page that failed to load shows little
// else.
func DominatedByBoilerplate(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	if !strings.Contains(lower, "official athletics website") {
		return false
	}
	// Boilerplate dominates when there is little text beyond the slogan.
	return len(trimmed) < 400 && !HasOfficiatingKeyword(lower)
}

func findFirst(n *html.Node, tag string) *html.Node {
	var res *html.Node
	var dfs func(*html.Node)
	dfs = func(cur *html.Node) {
		if res != nil {
			return
		}
		if cur.Type == html.ElementNode && strings.EqualFold(cur.Data, tag) {
			res = cur
			return
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
			if res != nil {
				return
			}
		}
	}
	dfs(n)
	return res
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skippedTags[name] {
			return
		}
		switch name {
		case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "div", "ul", "ol", "table":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}
	if n.Type == html.TextNode {
		data := strings.ReplaceAll(n.Data, "\t", " ")
		data = strings.ReplaceAll(data, "\r", " ")
		b.WriteString(data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "div":
			b.WriteString("\n")
		}
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
