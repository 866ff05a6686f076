package compose

import (
	"strings"
	"testing"

	"github.com/logicaloutcomes/gather/models"
)

func TestConsolidate(t *testing.T) {
	results := []models.ScrapeResult{
		{URL: "https://org.example/a", Status: models.StatusSuccess, Content: "first body"},
		{URL: "https://org.example/b", Status: models.StatusNotFound, Error: "HTTP 404"},
		{URL: "https://org.example/c", Status: models.StatusSuccess, Content: "third body"},
	}

	got := Consolidate(results)

	if !strings.Contains(got, "Source: https://org.example/a\n\nfirst body") {
		t.Errorf("first section malformed:\n%s", got)
	}
	if !strings.Contains(got, "Source: https://org.example/c\n\nthird body") {
		t.Errorf("third section malformed:\n%s", got)
	}
	if strings.Contains(got, "org.example/b") {
		t.Errorf("failed fetch leaked into consolidated block:\n%s", got)
	}
	if strings.Count(got, "\n\n---\n\n") != 1 {
		t.Errorf("expected exactly one separator between two sections:\n%s", got)
	}
}

func TestConsolidate_NoSuccesses(t *testing.T) {
	results := []models.ScrapeResult{
		{URL: "https://org.example/a", Status: models.StatusTimeout},
	}
	if got := Consolidate(results); got != "" {
		t.Errorf("expected empty block, got %q", got)
	}
}

func TestLabeled(t *testing.T) {
	labels := []models.LabeledURL{
		{Label: "Annual report", URL: "https://org.example/2024", Normalized: "https://org.example/2024"},
		{Label: "Financials", URL: "https://org.example/finance", Normalized: "https://org.example/finance"},
		{Label: "Unfetched", URL: "https://org.example/other", Normalized: "https://org.example/other"},
	}
	results := []models.ScrapeResult{
		{URL: "https://org.example/2024", Status: models.StatusSuccess, Content: "report text"},
		{URL: "https://org.example/finance", Status: models.StatusBlocked, Error: "HTTP 403"},
	}

	got := Labeled(labels, results)
	if len(got) != 2 {
		t.Fatalf("got %d labeled results, want 2 (unfetched omitted)", len(got))
	}
	if got[0].Label != "Annual report" || got[0].Content != "report text" {
		t.Errorf("labeled[0] = %+v", got[0])
	}
	if got[1].Status != models.StatusBlocked || got[1].Error != "HTTP 403" {
		t.Errorf("failed fetch must keep status and error: %+v", got[1])
	}
}

func TestConsolidateLabeled(t *testing.T) {
	labeled := []models.LabeledScrapeResult{
		{Label: "Annual report", URL: "https://org.example/2024", Status: models.StatusSuccess, Content: "report text"},
		{Label: "Financials", URL: "https://org.example/finance", Status: models.StatusBlocked, Error: "HTTP 403"},
	}

	got := ConsolidateLabeled(labeled)
	if !strings.Contains(got, "### Annual report (https://org.example/2024)\n\nreport text") {
		t.Errorf("labeled section malformed:\n%s", got)
	}
	if strings.Contains(got, "Financials") {
		t.Errorf("failed section leaked:\n%s", got)
	}
}
