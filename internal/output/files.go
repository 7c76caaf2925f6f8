package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/markscrivo/crewscrape/internal/scrape"
	"github.com/markscrivo/crewscrape/internal/usage"
)

// savedResult is the on-disk JSON shape: the scrape result plus the usage
// summary that produced it.
type savedResult struct {
	scrape.Result
	Usage usage.Summary `json:"usage"`
}

// SaveJSON writes the result to dir as <domain>-<date>.json and returns the
// path. The date is flattened (slashes would split the filename).
func SaveJSON(dir, schoolDomain, gameDate string, res scrape.Result, sum usage.Summary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.json", sanitize(schoolDomain), sanitize(gameDate))
	path := filepath.Join(dir, name)

	b, err := json.MarshalIndent(savedResult{Result: res, Usage: sum}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

var csvHeader = []string{
	"scrapedAt", "school", "opponent", "gameDate",
	"referee", "umpire", "linesman", "lineJudge",
	"backJudge", "fieldJudge", "sideJudge", "centerJudge",
	"sourceUrl",
}

// AppendCSV appends one row to the running log at path, writing the header
// first when the file is new or empty.
func AppendCSV(path string, res scrape.Result) error {
	if res.Data == nil {
		return fmt.Errorf("no data to log")
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat csv: %w", err)
	}

	w := csv.NewWriter(f)
	if st.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	d := res.Data
	sourceURL := ""
	if res.Metadata != nil {
		sourceURL = res.Metadata.URL
	}
	row := []string{
		d.ScrapedAt.Format(time.RFC3339),
		d.School, d.Game.Opponent, d.Game.Date,
		d.Officials.Referee, d.Officials.Umpire, d.Officials.Linesman, d.Officials.LineJudge,
		d.Officials.BackJudge, d.Officials.FieldJudge, d.Officials.SideJudge, d.Officials.CenterJudge,
		sourceURL,
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// CrewSheetPDF renders a one-page printable crew sheet.
func CrewSheetPDF(path string, res scrape.Result) error {
	if res.Data == nil {
		return fmt.Errorf("no data to print")
	}
	d := res.Data

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Officiating Crew", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	headline := d.School
	if d.Game.Opponent != "" {
		headline += " vs " + d.Game.Opponent
	}
	if d.Game.Date != "" {
		headline += "  -  " + d.Game.Date
	}
	pdf.CellFormat(0, 8, headline, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	for _, p := range positions {
		name := p.value(d.Officials)
		if name == "" {
			name = "-"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(45, 8, p.label, "B", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, name, "B", 1, "L", false, 0, "")
	}

	if res.Metadata != nil && res.Metadata.URL != "" {
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "Source: "+res.Metadata.URL, "", 1, "L", false, 0, "")
	}

	return pdf.OutputFileAndClose(path)
}

// SaveScreenshot writes the captured schedule-page PNG next to the results.
func SaveScreenshot(dir, schoolDomain string, png []byte) (string, error) {
	if len(png) == 0 {
		return "", fmt.Errorf("no screenshot captured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-schedule.png", sanitize(schoolDomain)))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write screenshot: %w", err)
	}
	return path, nil
}

func sanitize(s string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "_")
	return r.Replace(strings.TrimSpace(s))
}
