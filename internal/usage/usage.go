// Package usage is the append-only token/cost ledger kept per extraction
// engine instance. One tracker lives for exactly one orchestrator run, so
// summaries never leak across requests.
package usage

import (
	"sync"
	"time"
)

// Record is one semantic-extraction call's accounting entry.
type Record struct {
	InputTokens  int       `json:"inputTokens"`
	OutputTokens int       `json:"outputTokens"`
	Cost         float64   `json:"cost"`
	Model        string    `json:"model"`
	Operation    string    `json:"operation"`
	Timestamp    time.Time `json:"timestamp"`
}

// OperationTotals aggregates the records sharing one operation label.
type OperationTotals struct {
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"inputTokens"`
	OutputTokens int     `json:"outputTokens"`
	Cost         float64 `json:"cost"`
}

// Summary is the aggregate view returned to API metadata and CLI reporting.
type Summary struct {
	TotalInputTokens  int                        `json:"totalInputTokens"`
	TotalOutputTokens int                        `json:"totalOutputTokens"`
	TotalCost         float64                    `json:"totalCost"`
	OperationCount    int                        `json:"operationCount"`
	ByOperation       map[string]OperationTotals `json:"byOperation"`
}

// Tracker accumulates Records. The zero value is usable. It is safe for
// concurrent use, though within one orchestrator run calls are sequential.
type Tracker struct {
	mu      sync.Mutex
	records []Record
	now     func() time.Time
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Track appends one entry, computing cost from the static pricing table.
// It returns the computed cost for logging convenience.
func (t *Tracker) Track(inputTokens, outputTokens int, model, operation string) float64 {
	cost := Cost(PricingFor(model), inputTokens, outputTokens)
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	t.records = append(t.records, Record{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
		Model:        model,
		Operation:    operation,
		Timestamp:    now(),
	})
	return cost
}

// Records returns a copy of the ledger in append order.
func (t *Tracker) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Summary aggregates the ledger.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summary{ByOperation: map[string]OperationTotals{}}
	for _, r := range t.records {
		s.TotalInputTokens += r.InputTokens
		s.TotalOutputTokens += r.OutputTokens
		s.TotalCost += r.Cost
		s.OperationCount++
		op := s.ByOperation[r.Operation]
		op.Calls++
		op.InputTokens += r.InputTokens
		op.OutputTokens += r.OutputTokens
		op.Cost += r.Cost
		s.ByOperation[r.Operation] = op
	}
	return s
}

// Reset clears the ledger. Trackers are per-request, so this exists mainly
// for reuse in tests.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = nil
}
