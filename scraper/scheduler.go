package scraper

import (
	"context"
	"sync"

	"github.com/logicaloutcomes/gather/models"
)

// BatchProgress receives one URL's terminal result as soon as it is known,
// independent of the rest of its batch. Calls arrive in completion order from
// worker goroutines; implementations must be safe for concurrent use.
type BatchProgress func(index int, result models.ScrapeResult)

// BatchOptions controls one FetchAll run.
type BatchOptions struct {
	// Concurrency is the batch size: at most this many fetches are in
	// flight at once. Default: 4.
	Concurrency int

	// OnProgress, when set, is invoked once per URL at terminal state.
	OnProgress BatchProgress
}

// FetchAll runs the cascade across all URLs in consecutive bounded batches.
//
// URLs within a batch are fetched concurrently; batch N+1 does not start
// until batch N has fully settled, which bounds peak outbound connections.
// The returned slice matches the input order regardless of completion order.
//
// Cancelling ctx stops new batches from starting; already-settled results
// are kept, and URLs never attempted are reported as timeouts with a
// cancellation message.
func (s *Scraper) FetchAll(ctx context.Context, targets []string, opts BatchOptions) []models.ScrapeResult {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]models.ScrapeResult, len(targets))

	for batchStart := 0; batchStart < len(targets); batchStart += concurrency {
		if ctx.Err() != nil {
			for i := batchStart; i < len(targets); i++ {
				results[i] = cancelledResult(targets[i])
				if opts.OnProgress != nil {
					opts.OnProgress(i, results[i])
				}
			}
			break
		}

		end := batchStart + concurrency
		if end > len(targets) {
			end = len(targets)
		}

		var wg sync.WaitGroup
		for i := batchStart; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = s.Fetch(ctx, targets[idx])
				if opts.OnProgress != nil {
					opts.OnProgress(idx, results[idx])
				}
			}(i)
		}
		wg.Wait()
	}

	return results
}

func cancelledResult(target string) models.ScrapeResult {
	return models.ScrapeResult{
		URL:    target,
		Status: models.StatusTimeout,
		Error:  "fetch cancelled before start",
	}
}
