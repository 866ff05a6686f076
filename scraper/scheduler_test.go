package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/logicaloutcomes/gather/models"
)

func TestFetchAll_PreservesInputOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer ts.Close()

	s := New(rawRelayFor("only", ts.URL), ts.Client(), fastOptions(), testLogger()).WithProcessor(identity)

	targets := []string{
		"https://example.org/a",
		"https://example.org/b",
		"https://example.org/c",
		"https://example.org/d",
		"https://example.org/e",
	}
	got := s.FetchAll(context.Background(), targets, BatchOptions{Concurrency: 2})

	if len(got) != len(targets) {
		t.Fatalf("got %d results, want %d", len(got), len(targets))
	}
	for i, r := range got {
		if r.URL != targets[i] {
			t.Errorf("result[%d].URL = %q, want %q", i, r.URL, targets[i])
		}
		if r.Status != models.StatusSuccess {
			t.Errorf("result[%d].Status = %s, want success", i, r.Status)
		}
	}
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer ts.Close()

	s := New(rawRelayFor("only", ts.URL), ts.Client(), fastOptions(), testLogger()).WithProcessor(identity)

	targets := []string{
		"https://example.org/1",
		"https://example.org/2",
		"https://example.org/3",
		"https://example.org/4",
		"https://example.org/5",
	}
	s.FetchAll(context.Background(), targets, BatchOptions{Concurrency: 2})

	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("peak in-flight = %d, want at most 2", p)
	}
}

func TestFetchAll_ProgressPerURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer ts.Close()

	s := New(rawRelayFor("only", ts.URL), ts.Client(), fastOptions(), testLogger()).WithProcessor(identity)

	var mu sync.Mutex
	seen := make(map[int]models.ScrapeStatus)

	targets := []string{"https://example.org/a", "https://example.org/b", "https://example.org/c"}
	s.FetchAll(context.Background(), targets, BatchOptions{
		Concurrency: 2,
		OnProgress: func(index int, result models.ScrapeResult) {
			mu.Lock()
			seen[index] = result.Status
			mu.Unlock()
		},
	})

	if len(seen) != len(targets) {
		t.Fatalf("progress fired for %d URLs, want %d", len(seen), len(targets))
	}
	for i := range targets {
		if seen[i] != models.StatusSuccess {
			t.Errorf("progress[%d] = %s, want success", i, seen[i])
		}
	}
}

func TestFetchAll_CancellationSkipsRemaining(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer ts.Close()

	s := New(rawRelayFor("only", ts.URL), ts.Client(), fastOptions(), testLogger()).WithProcessor(identity)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var fired int32
	targets := []string{"https://example.org/a", "https://example.org/b"}
	got := s.FetchAll(ctx, targets, BatchOptions{
		Concurrency: 1,
		OnProgress: func(int, models.ScrapeResult) {
			atomic.AddInt32(&fired, 1)
		},
	})

	for i, r := range got {
		if r.Status != models.StatusTimeout {
			t.Errorf("result[%d].Status = %s, want timeout for cancelled fetch", i, r.Status)
		}
		if r.Error == "" {
			t.Errorf("result[%d] missing cancellation message", i)
		}
	}
	if n := atomic.LoadInt32(&fired); n != int32(len(targets)) {
		t.Errorf("progress fired %d times, want %d even when cancelled", n, len(targets))
	}
}

func TestFetchAll_Empty(t *testing.T) {
	s := New(nil, &http.Client{}, fastOptions(), testLogger())
	got := s.FetchAll(context.Background(), nil, BatchOptions{})
	if len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}
