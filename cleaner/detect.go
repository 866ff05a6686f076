package cleaner

import (
	"strings"

	"github.com/logicaloutcomes/gather/models"
)

// minTextLength is the minimum payload length for the plain-text fallback
// classification. Anything shorter carries no usable content.
const minTextLength = 50

// Detect classifies a retrieved payload and decides whether the text
// extractor can process it.
//
// Byte signatures are checked before the declared content-type because relay
// services routinely mislabel what they return (an HTML page wrapped in a
// JSON envelope arrives as application/json). Callers whose relay framing is
// itself JSON must pass declaredType="" so the envelope's header is ignored.
//
// Decision order, first match wins:
//  1. signature sniff: %PDF → pdf, PK\x03\x04 → zip, outer {...} → json
//  2. declaredType: pdf / zip / json / image|video|audio → media
//  3. markup signature: <html, <!doctype, <body → html
//  4. fallback: long enough and NUL-free → text, else unknown
func Detect(payload string, declaredType string) models.ContentKind {
	head := payload
	if len(head) > 512 {
		head = head[:512]
	}
	head = strings.TrimSpace(head)

	switch {
	case strings.HasPrefix(head, "%PDF"):
		return models.ContentKind{Type: "pdf"}
	case strings.HasPrefix(head, "PK\x03\x04"):
		return models.ContentKind{Type: "zip"}
	case isJSONShape(payload):
		return models.ContentKind{Type: "json"}
	}

	ct := strings.ToLower(declaredType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return models.ContentKind{Type: "pdf"}
	case strings.Contains(ct, "application/zip"):
		return models.ContentKind{Type: "zip"}
	case strings.Contains(ct, "application/json"):
		return models.ContentKind{Type: "json"}
	case strings.HasPrefix(ct, "image/"), strings.HasPrefix(ct, "video/"), strings.HasPrefix(ct, "audio/"):
		return models.ContentKind{Type: "media"}
	}

	lower := strings.ToLower(head)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<body") {
		return models.ContentKind{Type: "html", Processable: true}
	}

	if len(payload) >= minTextLength && !strings.ContainsRune(payload, '\x00') {
		return models.ContentKind{Type: "text", Processable: true}
	}
	return models.ContentKind{Type: "unknown"}
}

// isJSONShape reports whether the whole payload looks like a single JSON
// object or array, which markup never does.
func isJSONShape(payload string) bool {
	t := strings.TrimSpace(payload)
	if len(t) < 2 {
		return false
	}
	return (t[0] == '{' && t[len(t)-1] == '}') || (t[0] == '[' && t[len(t)-1] == ']')
}
