package models

// FetchResponse is the response for POST /api/v1/fetch and /api/v1/retry.
type FetchResponse struct {
	// Success indicates whether the fetch terminated in StatusSuccess.
	Success bool `json:"success"`

	// Result is the full per-URL outcome, including failure diagnostics.
	Result ScrapeResult `json:"result"`

	// Tokens estimates the size of the extracted content.
	Tokens TokenInfo `json:"tokens"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only on request-level failures (bad input), not on
	// fetch failures, which are reported inside Result.
	Error *ErrorDetail `json:"error,omitempty"`
}

// GatherResponse is the response for POST /api/v1/gather and for a finished
// async job. It is the engine's full output at the wizard boundary.
type GatherResponse struct {
	Success bool `json:"success"`

	// Results holds one entry per valid URL, in input order.
	Results []ScrapeResult `json:"results"`

	// Labeled holds the subset of results whose URL had a line label in the
	// source text, as renderable sections.
	Labeled []LabeledScrapeResult `json:"labeled,omitempty"`

	// Consolidated is the merged text block of all successful extractions,
	// ready for prompt substitution.
	Consolidated string `json:"consolidated"`

	// Invalid lists URL candidates that failed validation, with reasons.
	Invalid []ExtractedURL `json:"invalid,omitempty"`

	// Tokens estimates the size of the consolidated block.
	Tokens TokenInfo `json:"tokens"`

	Error *ErrorDetail `json:"error,omitempty"`
}

// TokenInfo provides a rough token estimate for downstream prompt budgeting.
type TokenInfo struct {
	Estimate int `json:"estimate"`
}

// JobResponse is the immediate response for POST /api/v1/gather/async.
type JobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// JobStatusResponse is the response for GET /api/v1/gather/:id.
type JobStatusResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Response  *GatherResponse `json:"response,omitempty"`
}

// GatherJob tracks an in-progress async gather operation.
type GatherJob struct {
	ID            string
	Status        string // "processing", "completed", "failed", "partial"
	Total         int
	Completed     int
	Response      *GatherResponse
	CreatedAt     int64 // unix timestamp
	WebhookURL    string
	WebhookSecret string
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"` // "healthy"
	Uptime  string `json:"uptime"`
	Relays  int    `json:"relays"`
	Version string `json:"version"`
}
