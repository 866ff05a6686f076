package models

import "testing"

func TestScrapeStatus_Retryable(t *testing.T) {
	tests := []struct {
		status ScrapeStatus
		want   bool
	}{
		{StatusSuccess, false},
		{StatusUnsupportedContent, false},
		{StatusTimeout, true},
		{StatusRateLimited, true},
		{StatusBlocked, true},
		{StatusNotFound, true},
		{StatusNetworkError, true},
	}

	for _, tt := range tests {
		if got := tt.status.Retryable(); got != tt.want {
			t.Errorf("%s.Retryable() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFetchRequest_Defaults(t *testing.T) {
	var r FetchRequest
	r.Defaults()
	if r.Timeout != 8 {
		t.Errorf("Timeout = %d, want 8", r.Timeout)
	}
	if r.OutputFormat != "text" {
		t.Errorf("OutputFormat = %q, want text", r.OutputFormat)
	}

	set := FetchRequest{Timeout: 30, OutputFormat: "markdown"}
	set.Defaults()
	if set.Timeout != 30 || set.OutputFormat != "markdown" {
		t.Errorf("Defaults overwrote explicit values: %+v", set)
	}
}

func TestGatherRequest_Defaults(t *testing.T) {
	var r GatherRequest
	r.Defaults()
	if r.Concurrency != 4 {
		t.Errorf("Concurrency = %d, want 4", r.Concurrency)
	}
	if r.Timeout != 8 {
		t.Errorf("Timeout = %d, want 8", r.Timeout)
	}
	if r.OutputFormat != "text" {
		t.Errorf("OutputFormat = %q, want text", r.OutputFormat)
	}
}
