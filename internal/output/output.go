// Package output renders scrape results for people: a terminal table with a
// cost block, JSON files for downstream tooling, a running CSV log, and a
// printable crew-sheet PDF.
package output

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/markscrivo/crewscrape/internal/scrape"
	"github.com/markscrivo/crewscrape/internal/semantic"
	"github.com/markscrivo/crewscrape/internal/usage"
)

// position pairs a display label with its accessor, in on-field order.
type position struct {
	label string
	value func(semantic.Officials) string
}

var positions = []position{
	{"Referee", func(o semantic.Officials) string { return o.Referee }},
	{"Umpire", func(o semantic.Officials) string { return o.Umpire }},
	{"Linesman", func(o semantic.Officials) string { return o.Linesman }},
	{"Line Judge", func(o semantic.Officials) string { return o.LineJudge }},
	{"Back Judge", func(o semantic.Officials) string { return o.BackJudge }},
	{"Field Judge", func(o semantic.Officials) string { return o.FieldJudge }},
	{"Side Judge", func(o semantic.Officials) string { return o.SideJudge }},
	{"Center Judge", func(o semantic.Officials) string { return o.CenterJudge }},
}

// RenderResult writes the human-readable report for one scrape.
func RenderResult(w io.Writer, res scrape.Result, sum usage.Summary) {
	if !res.Success {
		fmt.Fprintf(w, "Scrape failed: %s\n", res.Error)
		renderCost(w, sum)
		return
	}
	if res.Data == nil {
		fmt.Fprintln(w, "No game found on the requested date.")
		renderCost(w, sum)
		return
	}

	d := res.Data
	fmt.Fprint(w, gameHeadline(d))
	if res.Metadata != nil && res.Metadata.URL != "" {
		fmt.Fprintf(w, "Source: %s\n", res.Metadata.URL)
	}
	fmt.Fprintln(w)

	if d.Officials.Count() == 0 {
		fmt.Fprintln(w, "Game located, but no officials were published.")
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.AppendHeader(table.Row{"Position", "Official"})
		for _, p := range positions {
			if name := p.value(d.Officials); name != "" {
				t.AppendRow(table.Row{p.label, name})
			}
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
	}
	renderCost(w, sum)
}

func gameHeadline(d *scrape.Data) string {
	s := d.School
	if d.Game.Opponent != "" {
		s += " vs " + d.Game.Opponent
	}
	if d.Game.Date != "" {
		s += " on " + d.Game.Date
	}
	return s + "\n"
}

func renderCost(w io.Writer, sum usage.Summary) {
	if sum.OperationCount == 0 {
		return
	}
	fmt.Fprintf(w, "\nLLM usage: %d calls, %d in / %d out tokens, $%.4f\n",
		sum.OperationCount, sum.TotalInputTokens, sum.TotalOutputTokens, sum.TotalCost)
	for op, tot := range sum.ByOperation {
		fmt.Fprintf(w, "  %-36s %d calls  $%.4f\n", op, tot.Calls, tot.Cost)
	}
}
