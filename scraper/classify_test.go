package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/logicaloutcomes/gather/models"
)

func TestClassify_NilAttempt(t *testing.T) {
	got := classify("https://example.org/x", nil)
	if got.Status != models.StatusNetworkError {
		t.Errorf("status = %s, want network_error", got.Status)
	}
	if got.Error == "" {
		t.Error("want a non-empty error message for empty cascade")
	}
	if got.URL != "https://example.org/x" {
		t.Errorf("url = %q, want target", got.URL)
	}
}

func TestClassify_StructuredFields(t *testing.T) {
	tests := []struct {
		name string
		last *attemptError
		want models.ScrapeStatus
	}{
		{"timeout flag", &attemptError{err: errors.New("relay direct: gave up"), timeout: true}, models.StatusTimeout},
		{"429", &attemptError{err: errors.New("relay x: HTTP 429"), httpStatus: 429}, models.StatusRateLimited},
		{"403", &attemptError{err: errors.New("relay x: HTTP 403"), httpStatus: 403}, models.StatusBlocked},
		{"404", &attemptError{err: errors.New("relay x: HTTP 404"), httpStatus: 404}, models.StatusNotFound},
		{"unsupported", &attemptError{err: errors.New("relay x: unsupported content"), unsupported: true, contentType: "pdf"}, models.StatusUnsupportedContent},
		{"500", &attemptError{err: errors.New("relay x: HTTP 500"), httpStatus: 500}, models.StatusNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("https://example.org/x", tt.last)
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestClassify_UnsupportedBeatsStatusCode(t *testing.T) {
	// An unsupported payload behind a 200 is unsupported, whatever the code.
	got := classify("https://example.org/x", &attemptError{
		err:         errors.New("relay x: unsupported content type \"zip\""),
		httpStatus:  200,
		unsupported: true,
		contentType: "zip",
	})
	if got.Status != models.StatusUnsupportedContent {
		t.Errorf("status = %s, want unsupported_content", got.Status)
	}
	if got.ContentType != "zip" {
		t.Errorf("content type = %q, want zip", got.ContentType)
	}
}

func TestClassify_RetryAfterCarried(t *testing.T) {
	got := classify("https://example.org/x", &attemptError{
		err:        errors.New("relay x: HTTP 429"),
		httpStatus: 429,
		retryAfter: 90 * time.Second,
	})
	if got.Status != models.StatusRateLimited {
		t.Fatalf("status = %s, want rate_limited", got.Status)
	}
	if got.RetryAfter != 90 {
		t.Errorf("RetryAfter = %d, want 90", got.RetryAfter)
	}
}

func TestClassify_MessagePhrasingFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want models.ScrapeStatus
	}{
		{"timeout text", "relay direct: context deadline exceeded", models.StatusTimeout},
		{"rate limit text", "relay x: rate limit hit", models.StatusRateLimited},
		{"forbidden text", "relay x: request forbidden by policy", models.StatusBlocked},
		{"not found text", "relay x: page not found", models.StatusNotFound},
		{"connection refused", "relay direct: dial tcp: connection refused", models.StatusNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify("https://example.org/x", &attemptError{err: errors.New(tt.msg)})
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}
