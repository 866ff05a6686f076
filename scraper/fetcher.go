package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/models"
	"github.com/logicaloutcomes/gather/relay"
)

// attemptError carries structured diagnostics through the retry path so the
// terminal classification never has to re-parse free-text error messages.
type attemptError struct {
	err         error
	httpStatus  int
	retryAfter  time.Duration // >0 when a 429 carried a usable Retry-After
	timeout     bool
	unsupported bool
	contentType string
}

func (e *attemptError) Error() string { return e.err.Error() }

// Fetch runs the full relay cascade for one URL. It never returns an error:
// every failure mode is captured in the ScrapeResult.
func (s *Scraper) Fetch(ctx context.Context, target string) models.ScrapeResult {
	start := time.Now()

	var last *attemptError
	for _, rl := range s.relays {
		result, aerr := s.tryRelay(ctx, rl, target)
		if aerr == nil {
			result.ElapsedMs = time.Since(start).Milliseconds()
			s.logger.Debug("fetch succeeded",
				"url", target, "proxy", result.Proxy, "elapsed_ms", result.ElapsedMs)
			return result
		}
		last = aerr
		s.logger.Debug("relay exhausted",
			"url", target, "relay", rl.Name(), "error", aerr.err)
		if ctx.Err() != nil {
			break
		}
	}

	result := classify(target, last)
	result.ElapsedMs = time.Since(start).Milliseconds()
	s.logger.Info("fetch failed",
		"url", target, "status", result.Status, "error", result.Error)
	return result
}

// tryRelay issues up to AttemptsPerRelay attempts through one relay,
// honoring rate-limit waits and backing off between transient failures.
func (s *Scraper) tryRelay(ctx context.Context, rl relay.Relay, target string) (models.ScrapeResult, *attemptError) {
	requestURL := rl.RequestURL(target)
	var last *attemptError

	for attempt := 1; attempt <= s.opts.AttemptsPerRelay; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		resp, body, err := relay.Do(attemptCtx, s.client, requestURL)
		cancel()

		if err != nil {
			last = &attemptError{
				err:     fmt.Errorf("relay %s: %w", rl.Name(), err),
				timeout: errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded,
			}
			if ctx.Err() != nil {
				// Caller cancellation, not a per-attempt timeout.
				last.timeout = true
				return models.ScrapeResult{}, last
			}
			if !s.backoff(ctx, attempt) {
				return models.ScrapeResult{}, last
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			wait, honor := retryAfterWait(resp.Header, s.opts.RetryAfterFallback, s.opts.RetryAfterMax)
			last = &attemptError{
				err:        fmt.Errorf("relay %s: HTTP 429", rl.Name()),
				httpStatus: resp.StatusCode,
				retryAfter: wait,
			}
			if !honor {
				// Server asked for longer than we are willing to wait;
				// abandon this relay as rate-limited.
				return models.ScrapeResult{}, last
			}
			if !sleepCtx(ctx, wait) {
				return models.ScrapeResult{}, last
			}
			continue
		}

		if resp.StatusCode >= 400 {
			last = &attemptError{
				err:        fmt.Errorf("relay %s: HTTP %d", rl.Name(), resp.StatusCode),
				httpStatus: resp.StatusCode,
			}
			// Client errors other than 408 will not change on retry.
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusRequestTimeout {
				return models.ScrapeResult{}, last
			}
			if !s.backoff(ctx, attempt) {
				return models.ScrapeResult{}, last
			}
			continue
		}

		payload, declaredType, perr := rl.Payload(resp.Header, body)
		if perr != nil {
			last = &attemptError{err: perr, httpStatus: resp.StatusCode}
			if !s.backoff(ctx, attempt) {
				return models.ScrapeResult{}, last
			}
			continue
		}

		kind := cleaner.Detect(payload, declaredType)
		if !kind.Processable {
			// Not retry-worthy on this relay: the payload will never parse.
			// A later relay may still deliver usable markup, since envelope
			// damage is relay-specific.
			return models.ScrapeResult{}, &attemptError{
				err:         fmt.Errorf("relay %s: unsupported content type %q", rl.Name(), kind.Type),
				httpStatus:  resp.StatusCode,
				unsupported: true,
				contentType: kind.Type,
			}
		}

		content, truncated := s.process(payload, target)
		if len(content) < s.opts.MinContentLength {
			// A byte-level 200 OK is not evidence of useful content.
			last = &attemptError{
				err:        fmt.Errorf("relay %s: extracted content too short (%d chars)", rl.Name(), len(content)),
				httpStatus: resp.StatusCode,
			}
			if !s.backoff(ctx, attempt) {
				return models.ScrapeResult{}, last
			}
			continue
		}

		return models.ScrapeResult{
			URL:         target,
			Status:      models.StatusSuccess,
			Content:     content,
			HTTPStatus:  resp.StatusCode,
			ContentType: kind.Type,
			Proxy:       rl.Name(),
			Truncated:   truncated,
		}, nil
	}

	return models.ScrapeResult{}, last
}

// backoff sleeps before retry attempt+1 with linear scaling and ±15% jitter,
// so concurrent fetches do not retry in lockstep. Returns false when the
// context was cancelled or this was the final attempt.
func (s *Scraper) backoff(ctx context.Context, attempt int) bool {
	if attempt >= s.opts.AttemptsPerRelay {
		return false
	}
	d := time.Duration(attempt) * s.opts.BaseBackoff
	jittered := time.Duration(float64(d) * (0.85 + rand.Float64()*0.3))
	return sleepCtx(ctx, jittered)
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// retryAfterWait reads a Retry-After header (delta seconds or HTTP date) and
// clamps it against the policy. honor is false when the requested wait
// exceeds max, meaning the relay should be abandoned rather than waited on.
func retryAfterWait(header http.Header, fallback, max time.Duration) (wait time.Duration, honor bool) {
	raw := header.Get("Retry-After")
	if raw == "" {
		return fallback, true
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		wait = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(raw); err == nil {
		wait = time.Until(t)
	} else {
		return fallback, true
	}
	if wait <= 0 {
		return fallback, true
	}
	if wait > max {
		return wait, false
	}
	return wait, true
}
