// Package normalize holds the pure string canonicalization used at the
// boundary where raw extraction output enters the data model. Officials'
// names arrive in at least three shapes ("John Smith", "Smith,John",
// "SMITH, JOHN") depending on which artifact they were pulled from; dates
// arrive in whatever rendering the source page chose. Everything downstream
// sees one canonical form.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalDateLayout is the wire format for game dates: MM/DD/YY.
const CanonicalDateLayout = "01/02/06"

var titleCaser = cases.Title(language.English)

// CommaOrder rewrites a display-order name ("John Smith") into
// "Smith,John". A name that already contains a comma is returned unchanged,
// which makes the function idempotent. Names without a space (single token,
// or empty) are returned as-is.
func CommaOrder(name string) string {
	s := collapseSpaces(strings.TrimSpace(name))
	if s == "" || strings.Contains(s, ",") {
		return s
	}
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return s
	}
	surname := fields[len(fields)-1]
	given := strings.Join(fields[:len(fields)-1], " ")
	return surname + "," + given
}

// DisplayOrder rewrites a "Surname,Given" name into "Given Surname".
// Names without a comma are returned unchanged.
func DisplayOrder(name string) string {
	s := collapseSpaces(strings.TrimSpace(name))
	if s == "" {
		return s
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 {
		return s
	}
	surname := strings.TrimSpace(s[:comma])
	given := strings.TrimSpace(s[comma+1:])
	if surname == "" || given == "" {
		return s
	}
	return given + " " + surname
}

// OfficialName is the single canonicalizer applied to every extracted
// official's name regardless of which phase produced it. The canonical
// internal representation is display order ("Given Surname"), title-cased
// when the source shouted in caps.
func OfficialName(raw string) string {
	s := collapseSpaces(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = DisplayOrder(s)
	if s == strings.ToUpper(s) && strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		s = titleCaser.String(strings.ToLower(s))
	}
	return s
}

// dateLayouts lists the renderings schedule pages and boxscores have been
// seen to use. Year-less layouts are resolved against the target year by
// DateMatches rather than parsed into a real date here.
var dateLayouts = []string{
	"01/02/06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Monday, January 2, 2006",
}

var monthDayLayouts = []string{
	"January 2",
	"Jan 2",
	"Mon, Jan 2",
	"Monday, January 2",
	"1/2",
	"01/02",
}

// Date parses a raw date string in any known rendering and returns the
// canonical MM/DD/YY form.
func Date(raw string) (string, error) {
	s := collapseSpaces(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(CanonicalDateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date: %q", raw)
}

// Renderings returns the textual variants of a canonical MM/DD/YY date that
// a schedule page might use. The list seeds the extraction prompt so the
// model knows which spellings count as a match.
func Renderings(canonical string) []string {
	t, err := time.Parse(CanonicalDateLayout, canonical)
	if err != nil {
		return []string{canonical}
	}
	return []string{
		t.Format("01/02/06"),
		t.Format("1/2/06"),
		t.Format("01/02/2006"),
		t.Format("1/2/2006"),
		t.Format("January 2"),
		t.Format("January 2, 2006"),
		t.Format("Jan 2"),
		t.Format("Mon, Jan 2"),
	}
}

// Matches is the deterministic guard on the model's self-reported game date.
// It reports whether candidate plausibly denotes the same day as the
// canonical MM/DD/YY target. A candidate that parses and disagrees on
// month/day (or on year, when it carries one) is a mismatch. A candidate
// that parses under no known layout yields true: schedule pages render dates
// in more ways than this list anticipates, and an unverifiable claim keeps
// the model's verdict rather than discarding a probable hit.
func Matches(candidate, target string) bool {
	want, err := time.Parse(CanonicalDateLayout, strings.TrimSpace(target))
	if err != nil {
		return true
	}
	s := collapseSpaces(strings.TrimSpace(candidate))
	if s == "" {
		return true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Month() == want.Month() && t.Day() == want.Day() && t.Year() == want.Year()
		}
	}
	for _, layout := range monthDayLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Month() == want.Month() && t.Day() == want.Day()
		}
	}
	return true
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
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
