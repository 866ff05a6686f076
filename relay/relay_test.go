package relay

import (
	"net/http"
	"strings"
	"testing"
)

func TestFromConfigs(t *testing.T) {
	relays := FromConfigs([]Config{
		{Name: "mirror", Endpoint: "https://mirror.example/get?url=%s", Mode: "json", Field: "contents", Escape: true},
		{Name: "passthrough", Endpoint: "https://pass.example/%s", Mode: "raw"},
		{Name: "bogus", Mode: "teleport"},
		{Name: "direct", Mode: "direct"},
	})

	if len(relays) != 3 {
		t.Fatalf("got %d relays, want 3 (unknown mode skipped)", len(relays))
	}
	names := []string{relays[0].Name(), relays[1].Name(), relays[2].Name()}
	want := []string{"mirror", "passthrough", "direct"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("relay[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDefaultConfigs_EndsWithDirect(t *testing.T) {
	configs := DefaultConfigs()
	if len(configs) == 0 {
		t.Fatal("no default relays")
	}
	if configs[len(configs)-1].Mode != "direct" {
		t.Errorf("last default relay mode = %q, want direct as final fallback", configs[len(configs)-1].Mode)
	}
}

func TestRequestURL_Escaping(t *testing.T) {
	target := "https://example.org/page?a=1&b=2"

	relays := FromConfigs([]Config{
		{Name: "escaped", Endpoint: "https://relay.example/get?url=%s", Mode: "raw", Escape: true},
		{Name: "prefix", Endpoint: "https://relay.example/", Mode: "raw"},
		{Name: "direct", Mode: "direct"},
	})

	escaped := relays[0].RequestURL(target)
	if strings.Contains(escaped, "?a=1&b=2") {
		t.Errorf("target query not escaped: %q", escaped)
	}
	if !strings.Contains(escaped, "https%3A%2F%2Fexample.org") {
		t.Errorf("escaped URL missing encoded target: %q", escaped)
	}

	prefixed := relays[1].RequestURL(target)
	if prefixed != "https://relay.example/"+target {
		t.Errorf("prefix endpoint = %q, want target appended", prefixed)
	}

	if direct := relays[2].RequestURL(target); direct != target {
		t.Errorf("direct = %q, want target unchanged", direct)
	}
}

func TestJSONRelay_Payload(t *testing.T) {
	r := &jsonRelay{name: "mirror", field: "contents"}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	payload, declaredType, err := r.Payload(header, []byte(`{"contents":"<html><body>page</body></html>","status":{"http_code":200}}`))
	if err != nil {
		t.Fatalf("Payload() error: %v", err)
	}
	if payload != "<html><body>page</body></html>" {
		t.Errorf("payload = %q", payload)
	}
	if declaredType != "" {
		t.Errorf("declaredType = %q, want empty so the envelope header is ignored", declaredType)
	}
}

func TestJSONRelay_PayloadErrors(t *testing.T) {
	r := &jsonRelay{name: "mirror", field: "contents"}

	if _, _, err := r.Payload(http.Header{}, []byte("not json at all")); err == nil {
		t.Error("want error for undecodable envelope")
	}
	if _, _, err := r.Payload(http.Header{}, []byte(`{"other":"x"}`)); err == nil {
		t.Error("want error for missing envelope field")
	}
}

func TestJSONRelay_NonStringField(t *testing.T) {
	r := &jsonRelay{name: "mirror", field: "contents"}

	payload, _, err := r.Payload(http.Header{}, []byte(`{"contents":{"nested":true}}`))
	if err != nil {
		t.Fatalf("Payload() error: %v", err)
	}
	if payload != `{"nested":true}` {
		t.Errorf("payload = %q, want raw JSON passed through", payload)
	}
}

func TestRawRelay_Payload(t *testing.T) {
	r := &rawRelay{name: "pass"}

	header := http.Header{}
	header.Set("Content-Type", "text/html; charset=utf-8")

	payload, declaredType, err := r.Payload(header, []byte("<html></html>"))
	if err != nil {
		t.Fatalf("Payload() error: %v", err)
	}
	if payload != "<html></html>" {
		t.Errorf("payload = %q", payload)
	}
	if declaredType != "text/html; charset=utf-8" {
		t.Errorf("declaredType = %q, want response header passed through", declaredType)
	}
}
