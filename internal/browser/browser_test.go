package browser

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffDoublesAndCaps(t *testing.T) {
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{9, 10 * time.Second},
		{0, 1 * time.Second},
	}
	for _, c := range cases {
		if got := Backoff(c.attempt); got != c.want {
			t.Fatalf("Backoff(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}
}

// Total delay across a full 3-attempt retry budget must stay bounded: the
// schedule-fetch retry property depends on 1s+2s capped growth, never
// unbounded.
func TestBackoffTotalBounded(t *testing.T) {
	var total time.Duration
	for attempt := 1; attempt < 3; attempt++ {
		total += Backoff(attempt)
	}
	if total > 3*time.Second {
		t.Fatalf("total backoff for 3 attempts = %v, want <= 3s", total)
	}
}

// A permanently failing navigation is tried exactly as many times as the
// retry budget allows, then surfaces a hard error.
func TestFetchPagePermanentFailureAttemptCount(t *testing.T) {
	calls := 0
	b := &Browser{
		MaxAttempts: 3,
		navigate: func(context.Context, string, FetchOptions) (*Page, error) {
			calls++
			return nil, errors.New("net::ERR_CONNECTION_REFUSED")
		},
		backoff: func(int) time.Duration { return 0 },
	}

	_, err := b.FetchPage(context.Background(), "https://down.example.com/", FetchOptions{})
	if err == nil {
		t.Fatal("exhausted retries should fail")
	}
	if calls != 3 {
		t.Fatalf("navigation attempts = %d, want exactly 3", calls)
	}
}

// FetchOptions.Attempts overrides the fetcher default for one call.
func TestFetchPagePerCallAttemptOverride(t *testing.T) {
	calls := 0
	b := &Browser{
		MaxAttempts: 5,
		navigate: func(context.Context, string, FetchOptions) (*Page, error) {
			calls++
			return nil, errors.New("render: empty document")
		},
		backoff: func(int) time.Duration { return 0 },
	}

	if _, err := b.FetchPage(context.Background(), "https://x.example.com/", FetchOptions{Attempts: 2}); err == nil {
		t.Fatal("expected failure")
	}
	if calls != 2 {
		t.Fatalf("navigation attempts = %d, want 2", calls)
	}
}

func TestFetchPageStopsOnSuccess(t *testing.T) {
	calls := 0
	b := &Browser{
		MaxAttempts: 3,
		navigate: func(context.Context, string, FetchOptions) (*Page, error) {
			calls++
			if calls == 2 {
				return &Page{HTML: "<html></html>"}, nil
			}
			return nil, errors.New("render: timeout")
		},
		backoff: func(int) time.Duration { return 0 },
	}

	page, err := b.FetchPage(context.Background(), "https://x.example.com/", FetchOptions{})
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if page == nil || calls != 2 {
		t.Fatalf("calls = %d, page = %v", calls, page)
	}
}
