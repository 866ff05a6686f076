package models

// ExtractedURL is one candidate URL found in free text or supplied explicitly,
// together with the outcome of validation and normalization.
//
// Invalid candidates are kept (not dropped) so callers can show the user why
// a URL was rejected.
type ExtractedURL struct {
	// Original is the raw substring exactly as it appeared in the input.
	Original string `json:"original"`

	// Normalized is the canonical https form: scheme://host/path?query,
	// host lower-cased, fragment stripped. Empty when Valid is false.
	Normalized string `json:"normalized,omitempty"`

	// Valid reports whether Normalized is a usable absolute URL.
	Valid bool `json:"valid"`

	// Error explains the rejection when Valid is false.
	Error string `json:"error,omitempty"`
}

// LabeledURL pairs a URL with the human-written context that preceded it on
// the same line of input, e.g. "Annual report: https://org.example/2024".
type LabeledURL struct {
	// Label is the trimmed text before the URL on its line, with trailing
	// separators stripped. Defaults to "Reference" when the line has no text.
	Label string `json:"label"`

	// URL is the raw matched URL.
	URL string `json:"url"`

	// Normalized is the canonical form, matching ExtractedURL.Normalized
	// for the same candidate.
	Normalized string `json:"normalized"`
}
