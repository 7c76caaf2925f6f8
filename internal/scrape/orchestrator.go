// Package scrape sequences the fetcher, document extractor, and semantic
// engine through the multi-phase fallback pipeline: locate the game on the
// schedule page, then source officials from a PDF, an HTML boxscore (with
// one secondary-boxscore hop and a PDF-link rescue), or the schedule page
// itself, in that order. One Orchestrator serves one request; it holds no
// state across runs.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/browser"
	"github.com/markscrivo/crewscrape/internal/normalize"
	"github.com/markscrivo/crewscrape/internal/pdfdoc"
	"github.com/markscrivo/crewscrape/internal/semantic"
	"github.com/markscrivo/crewscrape/internal/sites"
)

// ErrScheduleUnreachable marks the one unconditionally fatal failure:
// the schedule page could not be fetched within the retry budget.
var ErrScheduleUnreachable = errors.New("schedule page unreachable")

// DocumentExtractor is the PDF chain dependency (satisfied by
// pdfdoc.Extractor).
type DocumentExtractor interface {
	ExtractText(ctx context.Context, pdfURL string) (string, error)
}

// Orchestrator wires one request's collaborators. Build a fresh one per
// request: the engine instance carries the per-request usage ledger.
type Orchestrator struct {
	Sites   *sites.Resolver
	Fetcher browser.Fetcher
	Engine  semantic.Engine
	PDF     DocumentExtractor

	// ScheduleAttempts is the schedule-fetch retry budget (default 3).
	ScheduleAttempts int
	// BoxscoreAttempts is the boxscore-fetch retry budget (default 2).
	BoxscoreAttempts int
	// RequestTimeout bounds the whole run when positive.
	RequestTimeout time.Duration
}

// Run executes the pipeline and always returns a Result; errors surface in
// Result.Error, never as a panic or a Go error to the caller.
func (o *Orchestrator) Run(ctx context.Context, req Request) Result {
	start := time.Now()
	if o.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.RequestTimeout)
		defer cancel()
	}

	domain := sites.CleanDomain(req.SchoolDomain)
	site := o.Sites.ResolveSport(domain, req.Sport)
	meta := &Metadata{URL: site.ScheduleURL}
	finish := func(r Result) Result {
		meta.ProcessingTimeMS = time.Since(start).Milliseconds()
		r.Metadata = meta
		return r
	}

	target, err := normalize.Date(req.GameDate)
	if err != nil {
		return finish(Result{Success: false, Error: fmt.Sprintf("invalid game date: %v", err)})
	}

	// Phase 1: schedule fetch. The only unconditionally fatal stage.
	page, err := o.Fetcher.FetchPage(ctx, site.ScheduleURL, browser.FetchOptions{
		WaitSelector: site.WaitSelector,
		Screenshot:   req.Screenshot,
		Attempts:     o.scheduleAttempts(),
	})
	if err != nil {
		log.Error().Str("school", domain).Str("url", site.ScheduleURL).Err(err).Msg("schedule fetch exhausted")
		return finish(Result{Success: false, Error: fmt.Sprintf("%v: %v", ErrScheduleUnreachable, err)})
	}
	var shot []byte
	if page.Screenshot != nil {
		shot = page.Screenshot
	}

	// Phase 2: locate the game.
	link, err := o.Engine.ExtractGameLink(ctx, page.HTML, target, domain)
	if err != nil {
		// Phase-local failure: degrade to single-page extraction, which
		// can still locate the game and its officials in one pass.
		log.Warn().Str("school", domain).Err(err).Msg("game link extraction failed, trying schedule-page officials")
		return finish(o.schedulePageOnly(ctx, page.HTML, target, domain, site, start, shot))
	}
	if !link.GameFound {
		log.Info().Str("school", domain).Str("date", target).Msg("no game on target date")
		return finish(Result{Success: true, Screenshot: shot})
	}
	if link.Game != nil && !normalize.Matches(link.Game.Date, target) {
		// The model claims a match but its own reported date disagrees.
		log.Warn().Str("school", domain).Str("claimed", link.Game.Date).Str("target", target).Msg("rejecting game with mismatched date")
		return finish(Result{Success: true, Screenshot: shot})
	}

	boxscoreURL := absolutize(site.ScheduleURL, link.BoxscoreURL)
	pdfURL := absolutize(site.ScheduleURL, link.PDFURL)

	// Phase 3: officials sourcing, strict priority order.
	officials, sourceURL := o.sourceOfficials(ctx, sourcingInput{
		scheduleHTML: page.HTML,
		boxscoreURL:  boxscoreURL,
		pdfURL:       pdfURL,
		opponent:     opponentOf(link.Game),
		target:       target,
		domain:       domain,
	})

	game := semantic.Game{Date: target}
	if link.Game != nil {
		game = *link.Game
	}
	game.BoxscoreURL = boxscoreURL
	meta.URL = preferredURL(sourceURL, pdfURL, boxscoreURL, site.ScheduleURL)

	return finish(Result{
		Success: true,
		Data: &Data{
			Game:      game,
			Officials: officials,
			School:    site.School,
			ScrapedAt: time.Now().UTC(),
		},
		Screenshot: shot,
	})
}

type sourcingInput struct {
	scheduleHTML string
	boxscoreURL  string
	pdfURL       string
	opponent     string
	target       string
	domain       string
}

// sourceOfficials walks the fallback chain and returns the officials found
// (possibly empty) plus the URL they came from ("" when none yielded).
// Every failure inside is phase-local: logged, then on to the next step.
func (o *Orchestrator) sourceOfficials(ctx context.Context, in sourcingInput) (semantic.Officials, string) {
	// (a) A directly advertised PDF is authoritative when it pans out.
	if in.pdfURL != "" {
		if off, ok := o.officialsFromPDF(ctx, in.pdfURL); ok {
			return off, in.pdfURL
		}
	}

	// (b) HTML boxscore, with one secondary hop and a PDF-link rescue.
	if in.boxscoreURL != "" {
		if off, src, ok := o.officialsFromBoxscore(ctx, in); ok {
			return off, src
		}
		return semantic.Officials{}, ""
	}

	// (c) No deeper artifact exists: the schedule page is all there is.
	if in.pdfURL == "" {
		off, err := o.Engine.ExtractOfficials(ctx, in.scheduleHTML, in.target, in.domain)
		if err != nil {
			log.Warn().Str("school", in.domain).Err(err).Msg("schedule-page officials extraction failed")
			return semantic.Officials{}, ""
		}
		if off.Officials != nil && off.Officials.Count() > 0 {
			return *off.Officials, ""
		}
	}
	return semantic.Officials{}, ""
}

func (o *Orchestrator) officialsFromPDF(ctx context.Context, pdfURL string) (semantic.Officials, bool) {
	text, err := o.PDF.ExtractText(ctx, pdfURL)
	if err != nil {
		log.Warn().Str("url", pdfURL).Err(err).Msg("pdf extraction failed, continuing fallback chain")
		return semantic.Officials{}, false
	}
	off := pdfdoc.ParseOfficials(text)
	if off.Count() == 0 {
		log.Debug().Str("url", pdfURL).Msg("pdf text carried no officials")
		return semantic.Officials{}, false
	}
	return off, true
}

func (o *Orchestrator) officialsFromBoxscore(ctx context.Context, in sourcingInput) (semantic.Officials, string, bool) {
	page, err := o.Fetcher.FetchPage(ctx, in.boxscoreURL, browser.FetchOptions{Attempts: o.boxscoreAttempts()})
	if err != nil {
		log.Warn().Str("url", in.boxscoreURL).Err(err).Msg("boxscore fetch failed")
		return semantic.Officials{}, "", false
	}

	res, err := o.Engine.ExtractOfficialsFromBoxscore(ctx, page.HTML, in.opponent, in.domain)
	if err != nil {
		log.Warn().Str("url", in.boxscoreURL).Err(err).Msg("boxscore extraction failed")
		res = semantic.BoxscoreResult{}
	}
	if res.Officials != nil && res.Officials.Count() > 0 {
		return *res.Officials, in.boxscoreURL, true
	}

	// One secondary-boxscore hop, never more: the secondary page gets the
	// same extraction call once and its result is final for this branch.
	if res.SecondaryBoxscoreURL != "" {
		secondary := absolutize(in.boxscoreURL, res.SecondaryBoxscoreURL)
		log.Debug().Str("url", secondary).Msg("following secondary boxscore link")
		if page2, err := o.Fetcher.FetchPage(ctx, secondary, browser.FetchOptions{Attempts: o.boxscoreAttempts()}); err == nil {
			if res2, err := o.Engine.ExtractOfficialsFromBoxscore(ctx, page2.HTML, in.opponent, in.domain); err == nil {
				if res2.Officials != nil && res2.Officials.Count() > 0 {
					return *res2.Officials, secondary, true
				}
			} else {
				log.Warn().Str("url", secondary).Err(err).Msg("secondary boxscore extraction failed")
			}
		} else {
			log.Warn().Str("url", secondary).Err(err).Msg("secondary boxscore fetch failed")
		}
	}

	// PDF-link rescue: the boxscore HTML may still reference a PDF.
	if plr, err := o.Engine.ExtractPDFLink(ctx, page.HTML, in.opponent); err == nil && plr.PDFFound && plr.PDFURL != "" {
		rescueURL := absolutize(in.boxscoreURL, plr.PDFURL)
		if off, ok := o.officialsFromPDF(ctx, rescueURL); ok {
			return off, rescueURL, true
		}
	} else if err != nil {
		log.Warn().Str("url", in.boxscoreURL).Err(err).Msg("pdf link extraction failed")
	}

	return semantic.Officials{}, "", false
}

// schedulePageOnly is the degraded path when game-link extraction itself
// errored: one direct officials pass over the schedule page.
func (o *Orchestrator) schedulePageOnly(ctx context.Context, html, target, domain string, site sites.Site, start time.Time, shot []byte) Result {
	res, err := o.Engine.ExtractOfficials(ctx, html, target, domain)
	if err != nil || !res.GameFound {
		if err != nil {
			log.Warn().Str("school", domain).Err(err).Msg("schedule-page extraction also failed")
		}
		return Result{Success: true, Screenshot: shot}
	}
	officials := semantic.Officials{}
	if res.Officials != nil {
		officials = *res.Officials
	}
	return Result{
		Success: true,
		Data: &Data{
			Game:      semantic.Game{Date: target},
			Officials: officials,
			School:    site.School,
			ScrapedAt: time.Now().UTC(),
		},
		Screenshot: shot,
	}
}

func (o *Orchestrator) scheduleAttempts() int {
	if o.ScheduleAttempts > 0 {
		return o.ScheduleAttempts
	}
	return 3
}

func (o *Orchestrator) boxscoreAttempts() int {
	if o.BoxscoreAttempts > 0 {
		return o.BoxscoreAttempts
	}
	return 2
}

// preferredURL picks the traceability URL: the actual source when officials
// were found, else the deepest artifact reached, PDF over boxscore over
// schedule.
func preferredURL(sourceURL, pdfURL, boxscoreURL, scheduleURL string) string {
	if sourceURL != "" {
		return sourceURL
	}
	if pdfURL != "" {
		return pdfURL
	}
	if boxscoreURL != "" {
		return boxscoreURL
	}
	return scheduleURL
}

func opponentOf(g *semantic.Game) string {
	if g == nil {
		return ""
	}
	return g.Opponent
}

// absolutize resolves a possibly-relative href against the page it came
// from. Blank stays blank.
func absolutize(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
