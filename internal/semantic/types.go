package semantic

import "github.com/markscrivo/crewscrape/internal/normalize"

// Game is the metadata located for one schedule entry. Opponent is the
// minimum viable field: downstream officials extraction is opponent-keyed,
// not date-keyed, because schedule pages render dates inconsistently.
type Game struct {
	Date        string `json:"date"`
	HomeTeam    string `json:"homeTeam,omitempty"`
	AwayTeam    string `json:"awayTeam,omitempty"`
	Opponent    string `json:"opponent,omitempty"`
	Location    string `json:"location,omitempty"`
	Time        string `json:"time,omitempty"`
	BoxscoreURL string `json:"boxscoreUrl,omitempty"`
}

// Officials holds the crew by position. An empty field means "not found",
// never an error; a result with zero populated positions is still a result.
type Officials struct {
	Referee     string `json:"referee,omitempty"`
	Umpire      string `json:"umpire,omitempty"`
	Linesman    string `json:"linesman,omitempty"`
	LineJudge   string `json:"lineJudge,omitempty"`
	BackJudge   string `json:"backJudge,omitempty"`
	FieldJudge  string `json:"fieldJudge,omitempty"`
	SideJudge   string `json:"sideJudge,omitempty"`
	CenterJudge string `json:"centerJudge,omitempty"`
}

// Count returns the number of populated positions.
func (o Officials) Count() int {
	n := 0
	for _, v := range o.fields() {
		if *v != "" {
			n++
		}
	}
	return n
}

// Canonicalize rewrites every populated name into the canonical internal
// representation. Raw model output arrives in whichever order the source
// page used; this is the single boundary where that variance ends.
func (o *Officials) Canonicalize() {
	for _, v := range o.fields() {
		*v = normalize.OfficialName(*v)
	}
}

func (o *Officials) fields() []*string {
	return []*string{
		&o.Referee, &o.Umpire, &o.Linesman, &o.LineJudge,
		&o.BackJudge, &o.FieldJudge, &o.SideJudge, &o.CenterJudge,
	}
}

// GameLinkResult is the outcome of the schedule-page phase.
type GameLinkResult struct {
	GameFound   bool   `json:"gameFound"`
	Game        *Game  `json:"game,omitempty"`
	BoxscoreURL string `json:"boxscoreUrl,omitempty"`
	PDFURL      string `json:"pdfUrl,omitempty"`
}

// OfficialsResult is the outcome of direct schedule-page officials
// extraction, the no-boxscore fallback.
type OfficialsResult struct {
	GameFound bool       `json:"gameFound"`
	Officials *Officials `json:"officials,omitempty"`
}

// BoxscoreResult is the outcome of boxscore-page extraction. When the page
// has no officials but links a more detailed boxscore, SecondaryBoxscoreURL
// carries that link so the orchestrator can follow it exactly once.
type BoxscoreResult struct {
	GameFound            bool       `json:"gameFound"`
	Officials            *Officials `json:"officials,omitempty"`
	SecondaryBoxscoreURL string     `json:"secondaryBoxscoreUrl,omitempty"`
}

// PDFLinkResult is the outcome of scanning boxscore HTML for a linked or
// embedded PDF artifact.
type PDFLinkResult struct {
	PDFFound bool   `json:"pdfFound"`
	PDFURL   string `json:"pdfUrl,omitempty"`
}
