package models

// ScrapeStatus is the terminal classification of one URL's fetch.
type ScrapeStatus string

const (
	StatusSuccess            ScrapeStatus = "success"
	StatusTimeout            ScrapeStatus = "timeout"
	StatusRateLimited        ScrapeStatus = "rate_limited"
	StatusBlocked            ScrapeStatus = "blocked"
	StatusNotFound           ScrapeStatus = "not_found"
	StatusUnsupportedContent ScrapeStatus = "unsupported_content"
	StatusNetworkError       ScrapeStatus = "network_error"
)

// Retryable reports whether a fetch with this status may succeed if tried
// again. Unsupported content never will; the payload simply is not text.
func (s ScrapeStatus) Retryable() bool {
	switch s {
	case StatusSuccess, StatusUnsupportedContent:
		return false
	default:
		return true
	}
}

// ContentKind classifies a retrieved payload.
type ContentKind struct {
	// Type is one of "html", "text", "pdf", "zip", "json", "media", "unknown".
	Type string `json:"type"`

	// Processable reports whether the payload can be handed to the text
	// extractor. Binary and structured formats are skipped, not parsed.
	Processable bool `json:"processable"`
}

// ScrapeResult is the outcome of fetching one URL through the relay cascade.
//
// Content is present if and only if Status is StatusSuccess. Results are
// replaced wholesale as retries progress, never mutated field by field, so
// any snapshot handed to a progress callback is internally consistent.
type ScrapeResult struct {
	URL         string       `json:"url"`
	Status      ScrapeStatus `json:"status"`
	Content     string       `json:"content,omitempty"`
	Error       string       `json:"error,omitempty"`
	HTTPStatus  int          `json:"http_status,omitempty"`
	ContentType string       `json:"content_type,omitempty"`

	// Proxy records which relay mechanism produced the result. Diagnostic only.
	Proxy string `json:"proxy,omitempty"`

	// ElapsedMs is the wall time for the whole cascade, including retries.
	ElapsedMs int64 `json:"elapsed_ms"`

	// Truncated reports that Content was cut at the extraction size cap.
	Truncated bool `json:"truncated,omitempty"`

	// RetryAfter is the server-requested wait in seconds, set only when
	// Status is StatusRateLimited and the relay sent a usable Retry-After.
	RetryAfter int `json:"retry_after,omitempty"`
}

// LabeledScrapeResult joins a ScrapeResult with the label that introduced its
// URL in the source text. Produced only for URLs whose label is known.
type LabeledScrapeResult struct {
	Label   string       `json:"label"`
	URL     string       `json:"url"`
	Status  ScrapeStatus `json:"status"`
	Content string       `json:"content,omitempty"`
	Error   string       `json:"error,omitempty"`
}
