// crewscraped serves the officials scraper over HTTP. See internal/api for
// the route surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/api"
	"github.com/markscrivo/crewscrape/internal/app"
	"github.com/markscrivo/crewscrape/internal/config"
	"github.com/markscrivo/crewscrape/internal/jobs"
)

func main() {
	var (
		addr    string
		verbose bool
	)
	flag.StringVar(&addr, "addr", "", "Listen address (overrides config)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	_ = config.LoadDotenv(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	app.SetupLogging(cfg.LogLevel, true)

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(ctx, a.Run, jobs.NewStore())
	srv := api.NewServer(cfg.Addr, handler)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}
