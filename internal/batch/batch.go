// Package batch fans one game date out across many schools with a bounded
// worker pool and writes a results file whose shape is consumed by the
// downstream analysis scripts: a flat officials map per school plus summary
// buckets.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/scrape"
	"github.com/markscrivo/crewscrape/internal/semantic"
	"github.com/markscrivo/crewscrape/internal/usage"
)

// RunFunc executes one scrape and reports its usage.
type RunFunc func(ctx context.Context, req scrape.Request) (scrape.Result, usage.Summary)

// Entry is one school's outcome in the results file.
type Entry struct {
	Domain string `json:"domain"`
	School string `json:"school,omitempty"`
	// Success mirrors the scrape result: true covers both found games and
	// clean no-game runs.
	Success   bool               `json:"success"`
	GameInfo  *semantic.Game     `json:"gameInfo,omitempty"`
	Officials map[string]*string `json:"officials,omitempty"`
	Error     string             `json:"error,omitempty"`
	// DurationMS is this school's wall time.
	DurationMS int64 `json:"durationMs"`
}

// Summary buckets the entries for the run report.
type Summary struct {
	Total          int     `json:"total"`
	WithOfficials  int     `json:"withOfficials"`
	GameNoCrew     int     `json:"gameNoCrew"`
	NoGame         int     `json:"noGame"`
	Failed         int     `json:"failed"`
	TotalCost      float64 `json:"totalCost"`
	TotalLLMTokens int     `json:"totalLlmTokens"`
}

// Report is the results file payload.
type Report struct {
	GameDate  string    `json:"gameDate"`
	StartedAt time.Time `json:"startedAt"`
	Results   []Entry   `json:"results"`
	Summary   Summary   `json:"summary"`
}

// Run scrapes every domain for the date with at most workers in flight.
// Entries come back in input order.
func Run(ctx context.Context, run RunFunc, domains []string, gameDate string, workers int) Report {
	if workers < 1 {
		workers = 1
	}
	report := Report{
		GameDate:  gameDate,
		StartedAt: time.Now().UTC(),
		Results:   make([]Entry, len(domains)),
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, domain := range domains {
		wg.Add(1)
		go func(i int, domain string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			res, sum := run(ctx, scrape.Request{SchoolDomain: domain, GameDate: gameDate})
			entry := toEntry(domain, res)
			entry.DurationMS = time.Since(start).Milliseconds()

			mu.Lock()
			report.Results[i] = entry
			report.Summary.TotalCost += sum.TotalCost
			report.Summary.TotalLLMTokens += sum.TotalInputTokens + sum.TotalOutputTokens
			mu.Unlock()

			log.Info().Str("school", domain).Bool("success", res.Success).Msg("batch entry finished")
		}(i, domain)
	}
	wg.Wait()

	for _, e := range report.Results {
		report.Summary.Total++
		switch {
		case !e.Success:
			report.Summary.Failed++
		case e.GameInfo == nil:
			report.Summary.NoGame++
		case countNonNil(e.Officials) == 0:
			report.Summary.GameNoCrew++
		default:
			report.Summary.WithOfficials++
		}
	}
	return report
}

// toEntry flattens a scrape result into the analysis-script shape. Officials
// become a map with explicit nulls for unfilled positions.
func toEntry(domain string, res scrape.Result) Entry {
	e := Entry{Domain: domain, Success: res.Success, Error: res.Error}
	if res.Data == nil {
		return e
	}
	e.School = res.Data.School
	game := res.Data.Game
	e.GameInfo = &game
	e.Officials = officialsMap(res.Data.Officials)
	return e
}

func officialsMap(o semantic.Officials) map[string]*string {
	opt := func(s string) *string {
		if s == "" {
			return nil
		}
		return &s
	}
	return map[string]*string{
		"referee":     opt(o.Referee),
		"umpire":      opt(o.Umpire),
		"linesman":    opt(o.Linesman),
		"lineJudge":   opt(o.LineJudge),
		"backJudge":   opt(o.BackJudge),
		"fieldJudge":  opt(o.FieldJudge),
		"sideJudge":   opt(o.SideJudge),
		"centerJudge": opt(o.CenterJudge),
	}
}

func countNonNil(m map[string]*string) int {
	n := 0
	for _, v := range m {
		if v != nil {
			n++
		}
	}
	return n
}

// WriteReport writes the report as test-results-<date>.json in dir, with
// slashes in the date flattened for the filename.
func WriteReport(dir string, report Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	name := fmt.Sprintf("test-results-%s.json", strings.ReplaceAll(report.GameDate, "/", "-"))
	path := filepath.Join(dir, name)
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// ReadDomains loads one domain per line, ignoring blanks and # comments.
func ReadDomains(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read school list: %w", err)
	}
	var out []string
	seen := map[string]bool{}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			out = append(out, line)
		}
	}
	sort.Strings(out)
	return out, nil
}
