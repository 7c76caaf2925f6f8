package pdfdoc

import (
	"regexp"
	"strings"

	"github.com/markscrivo/crewscrape/internal/normalize"
	"github.com/markscrivo/crewscrape/internal/semantic"
)

// Officials extraction from PDF text is deterministic: print-style boxscores
// label the crew consistently enough that regexes beat an LLM call here.

// sectionWindow is how many lines after the "Officials" heading are scanned
// for positions. Crews are printed as one tight block.
const sectionWindow = 15

var sectionStartRe = regexp.MustCompile(`(?i)\b(game\s+officials|officials|referee)\b`)

type positionPattern struct {
	set func(*semantic.Officials, string)
	re  *regexp.Regexp
}

// namePattern captures up to the end of line; truncation against the next
// position keyword happens afterward, because crews are often printed as
// one run-on line with no separators.
func posRe(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `[:\s]+([A-Za-z][A-Za-z.,'\- ]+)`)
}

var positionPatterns = []positionPattern{
	{func(o *semantic.Officials, v string) { o.Referee = v }, posRe(`referee`)},
	{func(o *semantic.Officials, v string) { o.Umpire = v }, posRe(`umpire`)},
	{func(o *semantic.Officials, v string) { o.Linesman = v }, posRe(`(?:head\s+)?linesman`)},
	{func(o *semantic.Officials, v string) { o.LineJudge = v }, posRe(`line\s+judge`)},
	{func(o *semantic.Officials, v string) { o.BackJudge = v }, posRe(`back\s+judge`)},
	{func(o *semantic.Officials, v string) { o.FieldJudge = v }, posRe(`field\s+judge`)},
	{func(o *semantic.Officials, v string) { o.SideJudge = v }, posRe(`side\s+judge`)},
	{func(o *semantic.Officials, v string) { o.CenterJudge = v }, posRe(`center\s+judge`)},
}

// truncationKeywords end a captured name when positions run together on one
// line ("Referee: John Smith Umpire: Adam Jones").
var truncationKeywords = []string{
	"referee", "umpire", "linesman", "head linesman", "line judge",
	"back judge", "field judge", "side judge", "center judge",
	"alternate", "clock operator", "scorer", "temperature", "attendance",
}

// ParseOfficials scans extracted PDF text for the officials block and pulls
// per-position names. Zero populated positions is a valid outcome.
func ParseOfficials(text string) semantic.Officials {
	var out semantic.Officials
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if sectionStartRe.MatchString(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return out
	}
	end := start + sectionWindow
	if end > len(lines) {
		end = len(lines)
	}
	section := strings.Join(lines[start:end], "\n")

	for _, p := range positionPatterns {
		m := p.re.FindStringSubmatch(section)
		if len(m) < 2 {
			continue
		}
		name := cleanCapturedName(m[1])
		if name != "" {
			p.set(&out, name)
		}
	}
	return out
}

// cleanCapturedName truncates a raw capture at the next position-title
// keyword and canonicalizes the remainder ("Surname,Given" print order
// becomes display order).
func cleanCapturedName(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	cut := len(s)
	for _, kw := range truncationKeywords {
		if idx := strings.Index(lower, kw); idx > 0 && idx < cut {
			cut = idx
		}
	}
	s = strings.TrimSpace(s[:cut])
	s = strings.Trim(s, ".,;:-")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return normalize.OfficialName(s)
}
