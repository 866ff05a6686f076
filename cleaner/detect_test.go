package cleaner

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	longText := strings.Repeat("plain prose content ", 10)

	tests := []struct {
		name            string
		payload         string
		declaredType    string
		wantType        string
		wantProcessable bool
	}{
		{"pdf signature", "%PDF-1.7 binary follows", "text/html", "pdf", false},
		{"zip signature", "PK\x03\x04rest of archive", "text/html", "zip", false},
		{"json object", `{"error": "not found"}`, "text/html", "json", false},
		{"json array", `[1, 2, 3]`, "text/plain", "json", false},
		{"declared pdf", longText, "application/pdf", "pdf", false},
		{"declared zip", longText, "application/zip; charset=binary", "zip", false},
		{"declared json", longText, "application/json", "json", false},
		{"declared image", longText, "image/png", "media", false},
		{"declared video", longText, "video/mp4", "media", false},
		{"declared audio", longText, "audio/mpeg", "media", false},
		{"html doc", "<!DOCTYPE html><html><body>hi</body></html>", "", "html", true},
		{"html without doctype", "<html><head></head></html>", "application/octet-stream", "html", true},
		{"bare body tag", "something <body> here", "", "html", true},
		{"plain text", longText, "", "text", true},
		{"short junk", "404", "", "unknown", false},
		{"binary garbage", "ab\x00cd" + longText, "", "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.payload, tt.declaredType)
			if got.Type != tt.wantType {
				t.Errorf("Detect type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Processable != tt.wantProcessable {
				t.Errorf("Detect processable = %v, want %v", got.Processable, tt.wantProcessable)
			}
		})
	}
}

func TestDetect_SignatureBeatsHeader(t *testing.T) {
	// Relay services mislabel payloads. The sniffed signature must win.
	got := Detect("%PDF-1.4 stream", "text/html; charset=utf-8")
	if got.Type != "pdf" {
		t.Errorf("sniffed PDF behind text/html header classified as %q", got.Type)
	}
	if got.Processable {
		t.Error("pdf must not be processable")
	}
}

func TestDetect_EmptyDeclaredTypeSkipsHeader(t *testing.T) {
	// Callers unwrapping a JSON relay envelope pass declaredType "" so the
	// envelope's own application/json header cannot misclassify the inner page.
	got := Detect("<html><body>real page</body></html>", "")
	if got.Type != "html" || !got.Processable {
		t.Errorf("got %+v, want processable html", got)
	}
}

func TestIsJSONShape(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`{"a":1}`, true},
		{"  {\"a\":1}\n", true},
		{`[{"a":1}]`, true},
		{`{"unbalanced"`, false},
		{"<html>{}</html>", false},
		{"", false},
		{"{", false},
	}
	for _, tt := range tests {
		if got := isJSONShape(tt.in); got != tt.want {
			t.Errorf("isJSONShape(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
