// Package jobs is the in-memory store behind the async scrape API. Jobs are
// kept for the life of the process; there is no persistence and no eviction,
// which matches the service's interactive, low-volume usage.
package jobs

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/markscrivo/crewscrape/internal/scrape"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrNotFound is returned for lookups of unknown job IDs.
var ErrNotFound = errors.New("job not found")

// Job is one async scrape and its eventual outcome. Result is set only in
// the completed state; Error only in the failed state; EndTime only once the
// job reaches a terminal state.
type Job struct {
	ID        string         `json:"requestId"`
	Status    Status         `json:"status"`
	Request   scrape.Request `json:"request"`
	Result    *scrape.Result `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartTime time.Time      `json:"startTime"`
	EndTime   *time.Time     `json:"endTime,omitempty"`
}

// Store holds jobs behind a mutex. Safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job

	// now is swapped in tests.
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Create registers a pending job for the request and returns it.
func (s *Store) Create(req scrape.Request) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		ID:        NewID(),
		Status:    StatusPending,
		Request:   req,
		StartTime: s.now().UTC(),
	}
	s.jobs[j.ID] = j
	return snapshot(j)
}

// Start transitions a job to running.
func (s *Store) Start(id string) error {
	return s.update(id, func(j *Job, _ time.Time) {
		j.Status = StatusRunning
	})
}

// Complete stores the result and transitions to completed. A result with
// Success=false is still a completed job: the scrape ran to a conclusion.
func (s *Store) Complete(id string, res scrape.Result) error {
	return s.update(id, func(j *Job, now time.Time) {
		j.Status = StatusCompleted
		j.Result = &res
		j.EndTime = &now
	})
}

// Fail records an infrastructure-level failure (panic, context death) that
// prevented the scrape from producing a result at all.
func (s *Store) Fail(id string, msg string) error {
	return s.update(id, func(j *Job, now time.Time) {
		j.Status = StatusFailed
		j.Error = msg
		j.EndTime = &now
	})
}

// Get returns a copy of the job, or ErrNotFound.
func (s *Store) Get(id string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(j), nil
}

// List returns copies of all jobs, newest first.
func (s *Store) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, snapshot(j))
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].StartTime.Equal(out[k].StartTime) {
			return out[i].ID > out[k].ID
		}
		return out[i].StartTime.After(out[k].StartTime)
	})
	return out
}

func (s *Store) update(id string, fn func(*Job, time.Time)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fn(j, s.now().UTC())
	return nil
}

func snapshot(j *Job) *Job {
	cp := *j
	return &cp
}

// NewID returns a fresh request identifier. Exported because synchronous
// API calls also stamp their responses with one.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a timestamp-derived ID rather than crash.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))[:24]
	}
	return hex.EncodeToString(b[:])
}
