// Package api exposes the scraper over HTTP: a fire-and-forget async
// endpoint backed by the jobs store, a synchronous endpoint for callers that
// would rather wait, and the usual health and listing routes. Business
// negatives (no game, no officials) are 200s; HTTP errors are reserved for
// malformed requests and unknown jobs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/markscrivo/crewscrape/internal/jobs"
	"github.com/markscrivo/crewscrape/internal/scrape"
)

// syncTimeout bounds the synchronous endpoint; a full fallback chain with
// retries can legitimately take a couple of minutes.
const syncTimeout = 180 * time.Second

// version is reported by the health endpoint.
const version = "1.0.0"

// RunFunc executes one scrape. The server calls it with a fresh context per
// request; implementations build their own per-request collaborators.
type RunFunc func(ctx context.Context, req scrape.Request) scrape.Result

// Handler serves the API routes.
type Handler struct {
	run  RunFunc
	jobs *jobs.Store

	// base context for async jobs so they survive the HTTP request.
	baseCtx   context.Context
	startedAt time.Time
}

// NewHandler wires the routes. baseCtx bounds background job execution;
// pass the server's lifetime context so shutdown cancels in-flight jobs.
func NewHandler(baseCtx context.Context, run RunFunc, store *jobs.Store) *Handler {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Handler{run: run, jobs: store, baseCtx: baseCtx, startedAt: time.Now()}
}

// Router registers all routes on a fresh mux.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/scrape", h.Scrape)
	mux.HandleFunc("/scrape-sync", h.ScrapeSync)
	mux.HandleFunc("/status/", h.Status)
	mux.HandleFunc("/jobs", h.Jobs)
	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version,
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Scrape accepts a request, registers a job, and returns 202 with the URL
// to poll.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	job := h.jobs.Create(req)
	go h.runJob(job.ID, req)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"requestId": job.ID,
		"status":    "accepted",
		"statusUrl": fmt.Sprintf("/status/%s", job.ID),
	})
}

// scrapeResponse is the synchronous endpoint's envelope: the scrape result
// stamped with a request id and response time.
type scrapeResponse struct {
	Success   bool             `json:"success"`
	RequestID string           `json:"requestId"`
	Timestamp time.Time        `json:"timestamp"`
	Data      *scrape.Data     `json:"data,omitempty"`
	Metadata  *scrape.Metadata `json:"metadata,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ScrapeSync runs the scrape inline and returns the full result.
func (h *Handler) ScrapeSync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScrapeRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), syncTimeout)
	defer cancel()

	res := h.run(ctx, req)
	// A failed scrape is still a well-formed response; the success flag
	// carries the verdict.
	writeJSON(w, http.StatusOK, scrapeResponse{
		Success:   res.Success,
		RequestID: jobs.NewID(),
		Timestamp: time.Now().UTC(),
		Data:      res.Data,
		Metadata:  res.Metadata,
		Error:     res.Error,
	})
}

// Status returns the job by ID, whatever its state.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	id := r.URL.Path[len("/status/"):]
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job id")
		return
	}
	job, err := h.jobs.Get(id)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown job id")
			return
		}
		writeError(w, http.StatusInternalServerError, "job lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// Jobs lists all jobs, newest first.
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.jobs.List()})
}

func (h *Handler) runJob(id string, req scrape.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("job", id).Interface("panic", rec).Msg("scrape job panicked")
			_ = h.jobs.Fail(id, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	if err := h.jobs.Start(id); err != nil {
		return
	}
	res := h.run(h.baseCtx, req)
	if err := h.jobs.Complete(id, res); err != nil {
		log.Warn().Str("job", id).Err(err).Msg("could not record job result")
	}
}

func decodeScrapeRequest(w http.ResponseWriter, r *http.Request) (scrape.Request, bool) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return scrape.Request{}, false
	}
	var req scrape.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return scrape.Request{}, false
	}
	if req.SchoolDomain == "" || req.GameDate == "" {
		writeError(w, http.StatusBadRequest, "schoolDomain and gameDate are required")
		return scrape.Request{}, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("encode response failed")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
