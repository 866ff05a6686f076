// Package urls turns free-form wizard text and explicit link lists into
// validated, canonicalized URL records, and preserves the human-written
// context label that precedes each URL in the source text.
package urls

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/logicaloutcomes/gather/models"
)

// urlPattern matches http(s) URLs and bare www. hosts embedded in text.
// It stops at whitespace and common enclosing punctuation so URLs inside
// parentheses, quotes or angle brackets are captured without their wrapper.
var urlPattern = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s<>"'` + "`" + `)\]}]+`)

// dangerousSchemes can smuggle script execution or local file access through
// a URL field and are rejected outright.
var dangerousSchemes = []string{"javascript:", "data:", "mailto:", "file:", "ftp:"}

// trailingPunct is sentence punctuation that commonly trails a URL in prose
// ("see https://example.org.") and is never part of the URL itself.
const trailingPunct = ".,;!?)]"

// Process validates and canonicalizes a single URL candidate. It never
// panics; rejected input yields Valid=false with a non-empty Error.
//
// Canonical form is https://host/path?query with the scheme forced to https,
// host lower-cased, default port and fragment dropped.
func Process(input string) models.ExtractedURL {
	out := models.ExtractedURL{Original: input}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		out.Error = "Empty URL"
		return out
	}

	lower := strings.ToLower(trimmed)
	for _, scheme := range dangerousSchemes {
		if strings.HasPrefix(lower, scheme) {
			out.Error = "unsafe scheme " + strings.TrimSuffix(scheme, ":")
			return out
		}
	}

	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		out.Error = "invalid URL: " + err.Error()
		return out
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		out.Error = "unsupported scheme " + parsed.Scheme
		return out
	}

	host := strings.ToLower(parsed.Hostname())
	if len(host) < 3 {
		out.Error = "hostname too short"
		return out
	}

	canonical := url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     parsed.Path,
		RawQuery: parsed.RawQuery,
	}
	if port := parsed.Port(); port != "" && port != "443" && port != "80" {
		canonical.Host = host + ":" + port
	}

	out.Normalized = canonical.String()
	out.Valid = true
	return out
}

// ExtractAndNormalize scans text for embedded URLs, merges them with the
// explicitly supplied list, and returns one record per distinct candidate.
//
// Valid entries are deduplicated by normalized form, keeping first-occurrence
// order. Invalid entries are retained so the caller can surface the reason.
func ExtractAndNormalize(text string, additional []string) []models.ExtractedURL {
	var candidates []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		candidates = append(candidates, strings.TrimRight(match, trailingPunct))
	}
	for _, u := range additional {
		if strings.TrimSpace(u) != "" {
			candidates = append(candidates, u)
		}
	}

	seen := make(map[string]struct{})
	var out []models.ExtractedURL
	for _, c := range candidates {
		rec := Process(c)
		if rec.Valid {
			if _, dup := seen[rec.Normalized]; dup {
				continue
			}
			seen[rec.Normalized] = struct{}{}
		}
		out = append(out, rec)
	}
	return out
}

// ExtractLabeled walks text line by line and pairs every valid URL with the
// text that precedes the line's first URL, e.g.
//
//	"Annual report: https://org.example/2024"  →  label "Annual report"
//
// URLs spanning multiple lines are not supported. When a line has several
// URLs they all share the same label. A line starting with a URL gets the
// placeholder label "Reference".
func ExtractLabeled(text string) []models.LabeledURL {
	var out []models.LabeledURL

	for _, line := range strings.Split(text, "\n") {
		locs := urlPattern.FindAllStringIndex(line, -1)
		if len(locs) == 0 {
			continue
		}

		label := cleanLabel(line[:locs[0][0]])

		for _, loc := range locs {
			raw := strings.TrimRight(line[loc[0]:loc[1]], trailingPunct)
			rec := Process(raw)
			if !rec.Valid {
				continue
			}
			out = append(out, models.LabeledURL{
				Label:      label,
				URL:        raw,
				Normalized: rec.Normalized,
			})
		}
	}
	return out
}

// cleanLabel trims whitespace and the separator characters that typically sit
// between a label and its URL.
func cleanLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ":-–— \t")
	if s == "" {
		return "Reference"
	}
	return s
}
