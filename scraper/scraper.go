// Package scraper implements the resilient fetch cascade: each URL is tried
// through an ordered list of relay mechanisms with per-attempt timeouts,
// retry with backoff, and honest classification of terminal failures.
package scraper

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/relay"
)

// Options controls retry and timing behavior for the cascade.
type Options struct {
	// Timeout is the hard deadline for one retrieval attempt.
	// Default: 8s.
	Timeout time.Duration

	// AttemptsPerRelay is the total attempts per relay before moving on.
	// Default: 3.
	AttemptsPerRelay int

	// BaseBackoff is the first retry delay; subsequent retries scale it
	// linearly (2s, 4s, ...) with ±15% jitter. Default: 2s.
	BaseBackoff time.Duration

	// RetryAfterFallback is the wait used for a 429 without a usable
	// Retry-After header. Default: 5s.
	RetryAfterFallback time.Duration

	// RetryAfterMax is the largest honored Retry-After; a server asking for
	// more gets the relay abandoned as rate-limited instead of a retry.
	// Default: 30s.
	RetryAfterMax time.Duration

	// MinContentLength is the shortest extracted text accepted as a real
	// success. A 200 OK with less is downgraded to a network error.
	// Default: 50.
	MinContentLength int
}

// Defaults fills unset fields.
func (o *Options) Defaults() {
	if o.Timeout == 0 {
		o.Timeout = 8 * time.Second
	}
	if o.AttemptsPerRelay == 0 {
		o.AttemptsPerRelay = 3
	}
	if o.BaseBackoff == 0 {
		o.BaseBackoff = 2 * time.Second
	}
	if o.RetryAfterFallback == 0 {
		o.RetryAfterFallback = 5 * time.Second
	}
	if o.RetryAfterMax == 0 {
		o.RetryAfterMax = 30 * time.Second
	}
	if o.MinContentLength == 0 {
		o.MinContentLength = 50
	}
}

// Processor turns a processable payload into final bounded content. It lets
// the caller swap the extraction strategy (plain text, markdown, CSS-filtered)
// without the cascade knowing the difference.
type Processor func(payload, target string) (content string, truncated bool)

// Scraper walks the relay cascade for individual URLs and schedules bounded
// concurrent batches. It holds no per-fetch mutable state and is safe for
// concurrent use.
type Scraper struct {
	relays  []relay.Relay
	client  *http.Client
	opts    Options
	logger  *slog.Logger
	process Processor
}

// New creates a Scraper over the given relay chain. A nil client gets the
// default fingerprinted relay client; a nil logger gets slog.Default().
// The default processor is the plain-text extractor.
func New(relays []relay.Relay, client *http.Client, opts Options, logger *slog.Logger) *Scraper {
	opts.Defaults()
	if client == nil {
		client = relay.NewClient()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scraper{
		relays:  relays,
		client:  client,
		opts:    opts,
		logger:  logger,
		process: cleaner.Extract,
	}
}

// WithTimeout returns a copy of the Scraper using the given per-attempt
// timeout, for request-level overrides.
func (s *Scraper) WithTimeout(d time.Duration) *Scraper {
	if d <= 0 {
		return s
	}
	c := *s
	c.opts.Timeout = d
	return &c
}

// WithProcessor returns a copy of the Scraper using the given payload
// processor. A nil processor keeps the default extractor.
func (s *Scraper) WithProcessor(p Processor) *Scraper {
	if p == nil {
		return s
	}
	c := *s
	c.process = p
	return &c
}

// Relays reports the size of the configured cascade.
func (s *Scraper) Relays() int { return len(s.relays) }
