// Package cache provides a small in-memory store of successful scrape
// results, so re-running the wizard on unchanged URLs skips the relay
// cascade entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/logicaloutcomes/gather/models"
)

// entry holds a cached result with its creation timestamp.
type entry struct {
	result    models.ScrapeResult
	createdAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
}

// New creates a Cache with the given maximum number of entries.
// A background goroutine runs every 5 minutes to evict entries older
// than 1 hour.
func New(maxEntries int) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
	}
	go c.cleanupLoop()
	return c
}

// Key generates a cache key from the normalized URL and output format.
func Key(normalizedURL, outputFormat string) string {
	h := sha256.New()
	h.Write([]byte(normalizedURL))
	h.Write([]byte("|"))
	h.Write([]byte(outputFormat))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result if it exists and is younger than maxAge
// milliseconds. If maxAge <= 0, no lookup is performed.
func (c *Cache) Get(key string, maxAgeMs int) (models.ScrapeResult, bool) {
	if maxAgeMs <= 0 {
		return models.ScrapeResult{}, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return models.ScrapeResult{}, false
	}
	if time.Since(e.createdAt) > time.Duration(maxAgeMs)*time.Millisecond {
		return models.ScrapeResult{}, false
	}
	return e.result, true
}

// Set stores a result. Only successful results are worth keeping; failures
// are cheap to reproduce and should be retried, not replayed.
func (c *Cache) Set(key string, result models.ScrapeResult) {
	if result.Status != models.StatusSuccess {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict one random entry if at capacity (map iteration is random in Go).
	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		result:    result,
		createdAt: time.Now(),
	}
}

// cleanupLoop evicts entries older than 1 hour every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-1 * time.Hour)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
