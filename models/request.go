package models

// FetchRequest is the payload for POST /api/v1/fetch.
type FetchRequest struct {
	// URL is the target page to fetch. Required.
	URL string `json:"url" binding:"required"`

	// Timeout is the per-attempt deadline in seconds.
	// Default: 8. Max: 60.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=60"`

	// OutputFormat controls the content format in the response.
	// Allowed: "text" (default), "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text markdown"`

	// CSSSelector is an optional CSS selector to filter markup before extraction.
	// When set, only the matched elements' outer HTML is processed.
	CSSSelector string `json:"css_selector,omitempty"`

	// IncludeTags / ExcludeTags filter markup by CSS selector before extraction.
	IncludeTags []string `json:"include_tags,omitempty"`
	ExcludeTags []string `json:"exclude_tags,omitempty"`

	// MaxAge enables cache reuse: a cached result younger than MaxAge
	// milliseconds is returned without fetching. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *FetchRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 8
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
}

// GatherRequest is the payload for POST /api/v1/gather and
// POST /api/v1/gather/async. It mirrors the wizard's inputs: a free-text
// program description and an optional explicit URL list. Either may be empty,
// but not both.
type GatherRequest struct {
	// Text is the free-form description; URLs embedded in it are discovered
	// and their line context preserved as labels.
	Text string `json:"text,omitempty"`

	// URLs are explicit additional links merged with those found in Text.
	URLs []string `json:"urls,omitempty" binding:"omitempty,max=50"`

	// Concurrency bounds simultaneously in-flight fetches. Default: 4. Max: 10.
	Concurrency int `json:"concurrency,omitempty" binding:"omitempty,min=1,max=10"`

	// Timeout is the per-attempt deadline in seconds. Default: 8. Max: 60.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=60"`

	// OutputFormat controls the consolidated block format.
	// Allowed: "text" (default), "markdown".
	OutputFormat string `json:"output_format,omitempty" binding:"omitempty,oneof=text markdown"`

	// WebhookURL, when set on the async endpoint, receives a signed
	// gather.completed event when the job finishes.
	WebhookURL    string `json:"webhook_url,omitempty" binding:"omitempty,url"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *GatherRequest) Defaults() {
	if r.Concurrency == 0 {
		r.Concurrency = 4
	}
	if r.Timeout == 0 {
		r.Timeout = 8
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "text"
	}
}

// RetryRequest is the payload for POST /api/v1/retry: a caller-initiated
// re-submission of one previously failed URL, run as an isolated batch.
type RetryRequest struct {
	URL string `json:"url" binding:"required"`

	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=60"`
}

// Defaults applies default values to unset fields.
func (r *RetryRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 8
	}
}
