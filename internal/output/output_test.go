package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/markscrivo/crewscrape/internal/scrape"
	"github.com/markscrivo/crewscrape/internal/semantic"
	"github.com/markscrivo/crewscrape/internal/usage"
)

func sampleResult() scrape.Result {
	return scrape.Result{
		Success: true,
		Data: &scrape.Data{
			Game:      semantic.Game{Date: "09/06/25", Opponent: "East State"},
			Officials: semantic.Officials{Referee: "John Smith", Umpire: "Adam Jones"},
			School:    "Florida State",
			ScrapedAt: time.Date(2025, 9, 6, 23, 30, 0, 0, time.UTC),
		},
		Metadata: &scrape.Metadata{URL: "https://seminoles.com/documents/box.pdf"},
	}
}

func TestRenderResultTable(t *testing.T) {
	var sb strings.Builder
	RenderResult(&sb, sampleResult(), usage.Summary{})
	out := sb.String()

	for _, want := range []string{"Florida State vs East State", "John Smith", "Adam Jones", "Referee", "box.pdf"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Linesman") {
		t.Errorf("empty positions should be omitted:\n%s", out)
	}
}

func TestRenderResultNoGame(t *testing.T) {
	var sb strings.Builder
	RenderResult(&sb, scrape.Result{Success: true}, usage.Summary{})
	if !strings.Contains(sb.String(), "No game found") {
		t.Fatalf("output = %q", sb.String())
	}
}

func TestRenderResultFailure(t *testing.T) {
	var sb strings.Builder
	RenderResult(&sb, scrape.Result{Success: false, Error: "schedule page unreachable"}, usage.Summary{})
	if !strings.Contains(sb.String(), "schedule page unreachable") {
		t.Fatalf("output = %q", sb.String())
	}
}

func TestRenderResultCostBlock(t *testing.T) {
	tr := usage.NewTracker()
	tr.Track(1000, 200, "gpt-4o", "extract_game_link")
	var sb strings.Builder
	RenderResult(&sb, sampleResult(), tr.Summary())
	out := sb.String()
	if !strings.Contains(out, "LLM usage") || !strings.Contains(out, "extract_game_link") {
		t.Fatalf("cost block missing:\n%s", out)
	}
}

func TestSaveJSON(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveJSON(dir, "seminoles.com", "09/06/25", sampleResult(), usage.Summary{})
	if err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	if filepath.Base(path) != "seminoles.com-09-06-25.json" {
		t.Fatalf("path = %q", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(b), `"John Smith"`) || !strings.Contains(string(b), `"usage"`) {
		t.Fatalf("content = %s", b)
	}
}

func TestAppendCSVHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := AppendCSV(path, sampleResult()); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := AppendCSV(path, sampleResult()); err != nil {
		t.Fatalf("second append: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus two entries", len(rows))
	}
	if rows[0][0] != "scrapedAt" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][4] != "John Smith" {
		t.Fatalf("referee column = %q", rows[1][4])
	}
}

func TestAppendCSVRequiresData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := AppendCSV(path, scrape.Result{Success: true}); err == nil {
		t.Fatal("nil data should be rejected")
	}
}

func TestCrewSheetPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crew.pdf")
	if err := CrewSheetPDF(path, sampleResult()); err != nil {
		t.Fatalf("CrewSheetPDF: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(b) == 0 || !strings.HasPrefix(string(b), "%PDF") {
		t.Fatalf("not a pdf, first bytes %q", b[:min(8, len(b))])
	}
}

func TestSaveScreenshot(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveScreenshot(dir, "seminoles.com", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	if filepath.Base(path) != "seminoles.com-schedule.png" {
		t.Fatalf("path = %q", path)
	}
}
