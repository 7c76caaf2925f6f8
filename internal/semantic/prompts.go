package semantic

import (
	"fmt"
	"strings"

	"github.com/markscrivo/crewscrape/internal/normalize"
)

// Prompt contracts follow one rule: strict JSON only, schema spelled out in
// the system message, page content alone in the user message. Date-matching
// tolerance is delegated to the model on purpose; per-site date phrasing is
// unbounded, so the prompt enumerates the renderings that count as a match
// instead of the orchestrator encoding regexes.

const gameLinkSystem = `You extract game information from a college football schedule page. Respond with strict JSON only, no narration, matching this schema:
{"gameFound": bool, "game": {"date": string, "homeTeam": string, "awayTeam": string, "opponent": string, "location": string, "time": string} | null, "boxscoreUrl": string | null, "pdfUrl": string | null}
Rules:
- A game matches the target date if any textual rendering of that date appears for it, including with or without leading zeros or the year, or spelled out (e.g. "September 6", "Sat, Sep 6").
- "opponent" is the other team's name and is the most important field.
- "boxscoreUrl" is the href of the game's box score / game recap / stats link, if any. "pdfUrl" is any direct link to a PDF box score for that game. Return URLs exactly as they appear in the markup (relative links unchanged).
- If no game matches the target date, return {"gameFound": false} with all other fields null.`

const officialsSystem = `You extract football game officials from a web page. Respond with strict JSON only, no narration, matching this schema:
{"gameFound": bool, "officials": {"referee": string, "umpire": string, "linesman": string, "lineJudge": string, "backJudge": string, "fieldJudge": string, "sideJudge": string, "centerJudge": string} | null}
Rules:
- Only include positions explicitly named on the page; omit or null the rest. Never invent names.
- If the page shows a game on the target date but no officials, return {"gameFound": true, "officials": null}.
- If no game matches the target date, return {"gameFound": false, "officials": null}.`

const boxscoreSystem = `You extract football game officials from a box score page. Respond with strict JSON only, no narration, matching this schema:
{"gameFound": bool, "officials": {"referee": string, "umpire": string, "linesman": string, "lineJudge": string, "backJudge": string, "fieldJudge": string, "sideJudge": string, "centerJudge": string} | null, "secondaryBoxscoreUrl": string | null}
Rules:
- Only include positions explicitly named; never invent names.
- If the page lists no officials but links to a fuller box score (e.g. "Full Box Score", "Official Box Score", a stats subpage for this game), return that link in "secondaryBoxscoreUrl" and leave officials null.
- "gameFound" is true when the page is a box score for the described game.`

const pdfLinkSystem = `You scan a box score page for a linked or embedded PDF version of the box score. Respond with strict JSON only, no narration, matching this schema:
{"pdfFound": bool, "pdfUrl": string | null}
Look for anchor hrefs ending in .pdf, embedded PDF viewers, or links labeled like "PDF Box Score". Return the URL exactly as written in the markup. If none exists, return {"pdfFound": false}.`

func gameLinkUser(content, targetDate, schoolDomain string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "School: %s\nTarget date: %s\n", schoolDomain, targetDate)
	fmt.Fprintf(&sb, "Date renderings that count as a match: %s\n\n", strings.Join(normalize.Renderings(targetDate), "; "))
	sb.WriteString("Schedule page content:\n")
	sb.WriteString(content)
	return sb.String()
}

func officialsUser(content, targetDate, schoolDomain string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "School: %s\nTarget date: %s\n", schoolDomain, targetDate)
	fmt.Fprintf(&sb, "Date renderings that count as a match: %s\n\n", strings.Join(normalize.Renderings(targetDate), "; "))
	sb.WriteString("Page content:\n")
	sb.WriteString(content)
	return sb.String()
}

func boxscoreUser(content, opponent, schoolDomain string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "School: %s\nOpponent: %s\n\n", schoolDomain, opponent)
	sb.WriteString("Box score page content:\n")
	sb.WriteString(content)
	return sb.String()
}

func pdfLinkUser(content, opponent string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Opponent: %s\n\n", opponent)
	sb.WriteString("Box score page HTML:\n")
	sb.WriteString(content)
	return sb.String()
}
