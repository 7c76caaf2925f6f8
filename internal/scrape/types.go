package scrape

import (
	"time"

	"github.com/markscrivo/crewscrape/internal/semantic"
)

// Request is the immutable input to one orchestrator run.
type Request struct {
	SchoolDomain string `json:"schoolDomain"`
	// GameDate is MM/DD/YY; other renderings are normalized on entry.
	GameDate string `json:"gameDate"`
	// Sport selects the schedule path on the school's site; empty means
	// football.
	Sport string `json:"sport,omitempty"`
	// Screenshot asks the fetcher to capture the schedule page.
	Screenshot bool `json:"-"`
}

// Data is the payload of a successful scrape that located a game. Officials
// is a value, never a pointer: a game with no recoverable crew yields an
// empty object, not an absent one.
type Data struct {
	Game      semantic.Game      `json:"game"`
	Officials semantic.Officials `json:"officials"`
	School    string             `json:"school"`
	ScrapedAt time.Time          `json:"scrapedAt"`
}

// Metadata carries traceability fields populated on every outcome.
type Metadata struct {
	// URL is the artifact the officials ultimately came from (PDF over
	// boxscore over schedule page), or the deepest artifact reached when
	// nothing yielded officials.
	URL string `json:"url,omitempty"`
	// ProcessingTimeMS is wall time for the whole run.
	ProcessingTimeMS int64 `json:"processingTime"`
}

// Result is the externally visible outcome of one run. Three shapes:
// Success=false is a hard failure; Success=true with nil Data is a clean
// run that found no game; Success=true with Data and an empty Officials is
// a located game with no recoverable crew.
type Result struct {
	Success  bool      `json:"success"`
	Data     *Data     `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
	// Screenshot of the schedule page when requested; not serialized.
	Screenshot []byte `json:"-"`
}
