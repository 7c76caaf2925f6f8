// batchtest scrapes one game date across a list of schools and writes a
// test-results-<date>.json report with per-school entries and summary
// buckets.
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
	"github.com/markscrivo/crewscrape/internal/batch"
	"github.com/markscrivo/crewscrape/internal/config"
)

// defaultDomains exercises a spread of site platforms when no school list
// is given.
var defaultDomains = []string{
	"seminoles.com",
	"rolltide.com",
	"georgiadogs.com",
	"ohiostatebuckeyes.com",
	"mgoblue.com",
	"texassports.com",
	"lsusports.net",
	"gostanford.com",
}

func main() {
	os.Exit(run())
}

func run() int {
	var (
		gameDate    string
		schoolsFile string
		workers     int
		verbose     bool
	)
	flag.StringVar(&gameDate, "date", "", "Game date to test, e.g. 09/06/25 (required)")
	flag.StringVar(&schoolsFile, "schools", "", "Path to a file with one school domain per line")
	flag.IntVar(&workers, "workers", 0, "Max concurrent schools (overrides config)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if gameDate == "" {
		flag.Usage()
		return 2
	}

	_ = config.LoadDotenv(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if workers > 0 {
		cfg.MaxConcurrentSchools = workers
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	app.SetupLogging(cfg.LogLevel, true)

	domains := defaultDomains
	if schoolsFile != "" {
		domains, err = batch.ReadDomains(schoolsFile)
		if err != nil {
			log.Error().Err(err).Msg("reading school list failed")
			return 1
		}
	}
	if len(domains) == 0 {
		log.Error().Msg("no schools to test")
		return 1
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("schools", len(domains)).Str("date", gameDate).Int("workers", cfg.MaxConcurrentSchools).Msg("batch run starting")
	report := batch.Run(ctx, a.Scrape, domains, gameDate, cfg.MaxConcurrentSchools)

	path, err := batch.WriteReport(cfg.ResultsDir, report)
	if err != nil {
		log.Error().Err(err).Msg("writing report failed")
		return 1
	}

	s := report.Summary
	fmt.Printf("Schools: %d  crews found: %d  game w/o crew: %d  no game: %d  failed: %d\n",
		s.Total, s.WithOfficials, s.GameNoCrew, s.NoGame, s.Failed)
	fmt.Printf("LLM cost: $%.4f across %d tokens\n", s.TotalCost, s.TotalLLMTokens)
	fmt.Printf("Report: %s\n", path)
	return 0
}
