// Package relay defines the retrieval mechanisms the fetch cascade walks
// through: third-party relay endpoints that fetch a target page on the
// engine's behalf, plus a direct HTTP tier. Relays are configuration, not
// code: adding one is a config entry, never a new control-flow branch.
package relay

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/logicaloutcomes/gather/models"
)

// Relay is one retrieval mechanism in the cascade.
type Relay interface {
	// Name identifies the relay in results and logs.
	Name() string

	// RequestURL builds the relay request URL for a target page.
	RequestURL(target string) string

	// Payload extracts the page payload from a relay response.
	//
	// declaredType is the content type the classifier may trust. Relays
	// whose own framing is JSON return "" here, because their envelope's
	// header says nothing about the wrapped page.
	Payload(header http.Header, body []byte) (payload string, declaredType string, err error)
}

// Config describes one relay as data.
type Config struct {
	// Name identifies the relay.
	Name string

	// Endpoint is the relay URL template with %s as the target placeholder.
	// Empty for direct mode.
	Endpoint string

	// Mode is "json" (payload inside a JSON envelope), "raw" (payload
	// verbatim), or "direct" (no intermediary).
	Mode string

	// Field is the envelope field holding the payload. json mode only.
	Field string

	// Escape controls whether the target is URL-encoded into the template.
	Escape bool
}

// FromConfigs builds the ordered relay chain from configuration.
// Unknown modes are skipped.
func FromConfigs(configs []Config) []Relay {
	relays := make([]Relay, 0, len(configs))
	for _, c := range configs {
		switch c.Mode {
		case "json":
			relays = append(relays, &jsonRelay{name: c.Name, endpoint: c.Endpoint, field: c.Field, escape: c.Escape})
		case "raw":
			relays = append(relays, &rawRelay{name: c.Name, endpoint: c.Endpoint, escape: c.Escape})
		case "direct":
			relays = append(relays, &directRelay{name: c.Name})
		}
	}
	return relays
}

// DefaultConfigs is the stock cascade: a JSON-envelope mirror, two raw
// passthroughs, then a direct fetch as the last resort.
func DefaultConfigs() []Config {
	return []Config{
		{Name: "allorigins", Endpoint: "https://api.allorigins.win/get?url=%s", Mode: "json", Field: "contents", Escape: true},
		{Name: "corsproxy", Endpoint: "https://corsproxy.io/?url=%s", Mode: "raw", Escape: true},
		{Name: "jina-reader", Endpoint: "https://r.jina.ai/%s", Mode: "raw"},
		{Name: "direct", Mode: "direct"},
	}
}

// jsonRelay wraps the page in a JSON envelope; the payload sits under a
// configured field.
type jsonRelay struct {
	name     string
	endpoint string
	field    string
	escape   bool
}

func (r *jsonRelay) Name() string { return r.name }

func (r *jsonRelay) RequestURL(target string) string {
	return buildEndpoint(r.endpoint, target, r.escape)
}

func (r *jsonRelay) Payload(_ http.Header, body []byte) (string, string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", "", models.NewGatherError(models.ErrCodeRelay,
			fmt.Sprintf("relay %s: decode envelope", r.name), err)
	}
	raw, ok := envelope[r.field]
	if !ok {
		return "", "", models.NewGatherError(models.ErrCodeRelay,
			fmt.Sprintf("relay %s: envelope missing field %q", r.name, r.field), nil)
	}
	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		// Field present but not a string: pass the raw JSON through and let
		// the classifier reject it.
		payload = string(raw)
	}
	// The envelope's content-type describes the envelope, not the page.
	return payload, "", nil
}

// rawRelay returns the page verbatim.
type rawRelay struct {
	name     string
	endpoint string
	escape   bool
}

func (r *rawRelay) Name() string { return r.name }

func (r *rawRelay) RequestURL(target string) string {
	return buildEndpoint(r.endpoint, target, r.escape)
}

func (r *rawRelay) Payload(header http.Header, body []byte) (string, string, error) {
	return string(body), header.Get("Content-Type"), nil
}

// directRelay fetches the target itself, no intermediary.
type directRelay struct {
	name string
}

func (r *directRelay) Name() string {
	if r.name == "" {
		return "direct"
	}
	return r.name
}

func (r *directRelay) RequestURL(target string) string { return target }

func (r *directRelay) Payload(header http.Header, body []byte) (string, string, error) {
	return string(body), header.Get("Content-Type"), nil
}

func buildEndpoint(endpoint, target string, escape bool) string {
	if escape {
		target = url.QueryEscape(target)
	}
	if strings.Contains(endpoint, "%s") {
		return fmt.Sprintf(endpoint, target)
	}
	return endpoint + target
}
