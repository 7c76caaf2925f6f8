// Package sites maps a school's athletics domain to the schedule URL and
// content-ready selector used to scrape it. Most college sites run on a
// handful of platforms (Sidearm above all), so a generic URL pattern covers
// the long tail and explicit entries cover the sites that deviate.
package sites

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Site describes how to reach and recognize one school's schedule page.
type Site struct {
	// ScheduleURL is the fully-qualified football schedule page.
	ScheduleURL string `yaml:"scheduleUrl"`
	// WaitSelector, when non-empty, is the CSS selector the fetcher waits
	// on before treating the page as rendered.
	WaitSelector string `yaml:"waitSelector"`
	// School is the display name used in results, when known.
	School string `yaml:"school"`
}

// builtin covers sites whose schedule lives off the generic pattern or that
// need a specific readiness selector. Keys are bare domains.
var builtin = map[string]Site{
	"seminoles.com":         {ScheduleURL: "https://seminoles.com/sports/football/schedule/", WaitSelector: ".sidearm-schedule-game", School: "Florida State"},
	"rolltide.com":          {ScheduleURL: "https://rolltide.com/sports/football/schedule", WaitSelector: ".sidearm-schedule-game", School: "Alabama"},
	"georgiadogs.com":       {ScheduleURL: "https://georgiadogs.com/sports/football/schedule", WaitSelector: ".sidearm-schedule-game", School: "Georgia"},
	"ohiostatebuckeyes.com": {ScheduleURL: "https://ohiostatebuckeyes.com/sports/football/schedule/", School: "Ohio State"},
	"mgoblue.com":           {ScheduleURL: "https://mgoblue.com/sports/football/schedule", WaitSelector: ".sidearm-schedule-game", School: "Michigan"},
	"texassports.com":       {ScheduleURL: "https://texassports.com/sports/football/schedule", WaitSelector: ".sidearm-schedule-game", School: "Texas"},
	"lsusports.net":         {ScheduleURL: "https://lsusports.net/sports/football/schedule/", School: "LSU"},
	"gostanford.com":        {ScheduleURL: "https://gostanford.com/sports/football/schedule", WaitSelector: ".sidearm-schedule-game", School: "Stanford"},
}

// Resolver answers schedule lookups, consulting overrides first, then the
// builtin table, then the generic pattern.
type Resolver struct {
	overrides map[string]Site
}

// NewResolver returns a resolver with no overrides loaded.
func NewResolver() *Resolver {
	return &Resolver{}
}

// NewResolverFromFile loads a YAML override file mapping domains to Site
// entries. A missing path is not an error; a malformed file is.
func NewResolverFromFile(path string) (*Resolver, error) {
	r := &Resolver{}
	if strings.TrimSpace(path) == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read sites file: %w", err)
	}
	var m map[string]Site
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse sites file: %w", err)
	}
	r.overrides = m
	return r, nil
}

// Resolve returns the football site entry for a school domain.
func (r *Resolver) Resolve(schoolDomain string) Site {
	return r.ResolveSport(schoolDomain, DefaultSport)
}

// DefaultSport is assumed when a request does not name one.
const DefaultSport = "football"

// ResolveSport returns the site entry for a school domain and sport. The
// override and builtin tables hold football entries; other sports always
// take the generic Sidearm-style URL pattern. Unknown domains get the
// generic pattern and no wait selector.
func (r *Resolver) ResolveSport(schoolDomain, sport string) Site {
	domain := CleanDomain(schoolDomain)
	sport = cleanSport(sport)
	if sport == DefaultSport {
		if r.overrides != nil {
			if s, ok := r.overrides[domain]; ok {
				return withDefaults(domain, sport, s)
			}
		}
		if s, ok := builtin[domain]; ok {
			return withDefaults(domain, sport, s)
		}
	}
	return Site{
		ScheduleURL: genericScheduleURL(domain, sport),
		School:      domain,
	}
}

func withDefaults(domain, sport string, s Site) Site {
	if s.ScheduleURL == "" {
		s.ScheduleURL = genericScheduleURL(domain, sport)
	}
	if s.School == "" {
		s.School = domain
	}
	return s
}

func genericScheduleURL(domain, sport string) string {
	return fmt.Sprintf("https://%s/sports/%s/schedule", domain, sport)
}

func cleanSport(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return DefaultSport
	}
	return strings.ReplaceAll(s, " ", "-")
}

// CleanDomain strips scheme, www prefix, path, and whitespace from a
// user-supplied domain.
func CleanDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return s
}
