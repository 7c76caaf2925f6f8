// crewscrape looks up the officiating crew for one school's game:
//
//	crewscrape [flags] <school-domain> <game-date>
//
// Example:
//
//	crewscrape --save --pdf seminoles.com 09/06/25
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/app"
	"github.com/markscrivo/crewscrape/internal/config"
	"github.com/markscrivo/crewscrape/internal/output"
	"github.com/markscrivo/crewscrape/internal/scrape"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		provider   string
		model      string
		llmBaseURL string
		saveJSON   bool
		saveCSV    bool
		savePDF    bool
		screenshot bool
		headed     bool
		verbose    bool
	)

	flag.StringVar(&provider, "provider", "", "LLM provider: openai, gemini, or anthropic (overrides config)")
	flag.StringVar(&model, "model", "", "Model name (overrides config)")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL override")
	flag.BoolVar(&saveJSON, "save", false, "Write the result as JSON into the results directory")
	flag.BoolVar(&saveCSV, "csv", false, "Append the crew to the running CSV log")
	flag.BoolVar(&savePDF, "pdf", false, "Write a printable crew-sheet PDF")
	flag.BoolVar(&screenshot, "screenshot", false, "Capture the rendered schedule page as PNG")
	flag.BoolVar(&headed, "headed", false, "Run the browser with a visible window")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <school-domain> <game-date>\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		return 2
	}
	schoolDomain, gameDate := flag.Arg(0), flag.Arg(1)

	_ = config.LoadDotenv(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if provider != "" {
		cfg.Provider = provider
	}
	if model != "" {
		cfg.Model = model
	}
	if llmBaseURL != "" {
		cfg.LLMBaseURL = llmBaseURL
	}
	if headed {
		cfg.Headless = false
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	app.SetupLogging(cfg.LogLevel, true)

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, sum := a.Scrape(ctx, scrape.Request{
		SchoolDomain: schoolDomain,
		GameDate:     gameDate,
		Screenshot:   screenshot,
	})

	output.RenderResult(os.Stdout, res, sum)

	if saveJSON {
		if path, err := output.SaveJSON(cfg.ResultsDir, schoolDomain, gameDate, res, sum); err != nil {
			log.Error().Err(err).Msg("saving JSON failed")
		} else {
			fmt.Printf("Saved %s\n", path)
		}
	}
	if saveCSV && res.Data != nil {
		csvPath := cfg.ResultsDir + "/officials.csv"
		if err := output.AppendCSV(csvPath, res); err != nil {
			log.Error().Err(err).Msg("appending CSV failed")
		} else {
			fmt.Printf("Logged to %s\n", csvPath)
		}
	}
	if savePDF && res.Data != nil {
		pdfPath := cfg.ResultsDir + "/crew-sheet.pdf"
		if err := os.MkdirAll(cfg.ResultsDir, 0o755); err == nil {
			if err := output.CrewSheetPDF(pdfPath, res); err != nil {
				log.Error().Err(err).Msg("writing crew sheet failed")
			} else {
				fmt.Printf("Wrote %s\n", pdfPath)
			}
		}
	}
	if screenshot && len(res.Screenshot) > 0 {
		if path, err := output.SaveScreenshot(cfg.ResultsDir, schoolDomain, res.Screenshot); err == nil {
			fmt.Printf("Screenshot %s\n", path)
		}
	}

	if !res.Success {
		return 1
	}
	return 0
}
