// Package app is the composition root shared by the CLI, the API server,
// and the batch tool. It owns the long-lived pieces (browser process, site
// resolver, LLM client) and builds the per-request pieces (engine, usage
// tracker, orchestrator) for each scrape.
package app

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/browser"
	"github.com/markscrivo/crewscrape/internal/config"
	"github.com/markscrivo/crewscrape/internal/fetch"
	"github.com/markscrivo/crewscrape/internal/llm"
	"github.com/markscrivo/crewscrape/internal/pdfdoc"
	"github.com/markscrivo/crewscrape/internal/scrape"
	"github.com/markscrivo/crewscrape/internal/semantic"
	"github.com/markscrivo/crewscrape/internal/sites"
	"github.com/markscrivo/crewscrape/internal/usage"
)

// App holds the shared collaborators. One App serves many scrapes.
type App struct {
	Cfg     config.Config
	Sites   *sites.Resolver
	Browser *browser.Browser

	client     llm.Client
	downloader *fetch.Downloader
}

// New validates the config and starts the shared browser. Close must be
// called when done.
func New(cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := llm.New(cfg.Provider, cfg.APIKey(), cfg.LLMBaseURL)
	if err != nil {
		return nil, err
	}
	resolver, err := sites.NewResolverFromFile(cfg.SitesFile)
	if err != nil {
		return nil, err
	}
	b, err := browser.New(cfg.Headless, cfg.BrowserTimeout)
	if err != nil {
		return nil, err
	}
	return &App{
		Cfg:        cfg,
		Sites:      resolver,
		Browser:    b,
		client:     client,
		downloader: fetch.NewDownloader(cfg.BrowserTimeout),
	}, nil
}

// Close releases the browser process.
func (a *App) Close() error {
	if a.Browser != nil {
		return a.Browser.Close()
	}
	return nil
}

// Scrape runs one request with a fresh engine and returns the result plus
// that request's usage summary.
func (a *App) Scrape(ctx context.Context, req scrape.Request) (scrape.Result, usage.Summary) {
	engine := semantic.NewEngine(a.client, a.Cfg.Model)
	orch := &scrape.Orchestrator{
		Sites:   a.Sites,
		Fetcher: a.Browser,
		Engine:  engine,
		PDF: &pdfdoc.Extractor{
			Downloader: a.downloader,
			Viewer:     a.Browser,
		},
		ScheduleAttempts: a.Cfg.RetryAttempts,
		RequestTimeout:   a.Cfg.RequestTimeout,
	}
	res := orch.Run(ctx, req)
	sum := engine.Usage().Summary()
	log.Info().
		Str("school", req.SchoolDomain).
		Str("date", req.GameDate).
		Bool("success", res.Success).
		Int("llmCalls", sum.OperationCount).
		Float64("cost", sum.TotalCost).
		Msg("scrape finished")
	return res, sum
}

// Run is Scrape without the usage summary, in the shape the API expects.
func (a *App) Run(ctx context.Context, req scrape.Request) scrape.Result {
	res, _ := a.Scrape(ctx, req)
	return res
}

// SetupLogging configures the global zerolog logger for the binaries.
func SetupLogging(level string, console bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(lvl)
	if console {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
