package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markscrivo/crewscrape/internal/jobs"
	"github.com/markscrivo/crewscrape/internal/scrape"
)

func newTestHandler(run RunFunc) *Handler {
	return NewHandler(context.Background(), run, jobs.NewStore())
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Version   string `json:"version"`
		Uptime    string `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.NotEmpty(t, body.Timestamp)
	assert.NotEmpty(t, body.Version)
	assert.NotEmpty(t, body.Uptime)
}

func TestScrapeAsyncLifecycle(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	run := func(_ context.Context, req scrape.Request) scrape.Result {
		once.Do(func() { close(started) })
		<-release
		return scrape.Result{Success: true}
	}
	h := newTestHandler(run)
	router := h.Router()

	rec := postJSON(t, router, "/scrape", `{"schoolDomain":"seminoles.com","gameDate":"09/06/25"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted struct {
		RequestID string `json:"requestId"`
		Status    string `json:"status"`
		StatusURL string `json:"statusUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.RequestID)
	assert.Equal(t, "accepted", accepted.Status)
	assert.Equal(t, "/status/"+accepted.RequestID, accepted.StatusURL)

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started")
	}
	close(release)

	// Poll until the job lands.
	deadline := time.After(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, accepted.StatusURL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var job jobs.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		if job.Status == jobs.StatusCompleted {
			require.NotNil(t, job.Result)
			assert.True(t, job.Result.Success)
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in %s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestScrapeSyncReturnsResultInline(t *testing.T) {
	run := func(_ context.Context, req scrape.Request) scrape.Result {
		return scrape.Result{
			Success: true,
			Data: &scrape.Data{
				School: "Florida State",
			},
		}
	}
	h := newTestHandler(run)

	rec := postJSON(t, h.Router(), "/scrape-sync", `{"schoolDomain":"seminoles.com","gameDate":"09/06/25"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success   bool   `json:"success"`
		RequestID string `json:"requestId"`
		Timestamp string `json:"timestamp"`
		Data      *struct {
			School string `json:"school"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.RequestID)
	assert.NotEmpty(t, body.Timestamp)
	require.NotNil(t, body.Data)
	assert.Equal(t, "Florida State", body.Data.School)
}

func TestScrapeSyncFailureIsStill200(t *testing.T) {
	run := func(_ context.Context, req scrape.Request) scrape.Result {
		return scrape.Result{Success: false, Error: "schedule page unreachable"}
	}
	h := newTestHandler(run)

	rec := postJSON(t, h.Router(), "/scrape-sync", `{"schoolDomain":"down.edu","gameDate":"09/06/25"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestScrapeValidation(t *testing.T) {
	h := newTestHandler(nil)
	router := h.Router()

	rec := postJSON(t, router, "/scrape", `{"gameDate":"09/06/25"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/scrape", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scrape", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/deadbeef", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsListing(t *testing.T) {
	release := make(chan struct{})
	run := func(_ context.Context, req scrape.Request) scrape.Result {
		<-release
		return scrape.Result{Success: true}
	}
	h := newTestHandler(run)
	router := h.Router()
	defer close(release)

	postJSON(t, router, "/scrape", `{"schoolDomain":"a.com","gameDate":"09/06/25"}`)
	postJSON(t, router, "/scrape", `{"schoolDomain":"b.com","gameDate":"09/06/25"}`)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Jobs []jobs.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Jobs, 2)
}

func TestJobPanicMarksFailed(t *testing.T) {
	run := func(_ context.Context, req scrape.Request) scrape.Result {
		panic("boom")
	}
	h := newTestHandler(run)
	router := h.Router()

	rec := postJSON(t, router, "/scrape", `{"schoolDomain":"a.com","gameDate":"09/06/25"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted struct {
		StatusURL string `json:"statusUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	deadline := time.After(2 * time.Second)
	for {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, accepted.StatusURL, nil))
		var job jobs.Job
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
		if job.Status == jobs.StatusFailed {
			assert.Contains(t, job.Error, "boom")
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in %s", job.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
