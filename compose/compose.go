// Package compose merges per-URL scrape results into the consolidated text
// block handed to the AI pipeline, reattaching the labels the source text
// supplied for each URL.
package compose

import (
	"fmt"
	"strings"

	"github.com/logicaloutcomes/gather/models"
)

// sectionSeparator visibly delimits sections inside the consolidated block.
const sectionSeparator = "\n\n---\n\n"

// Consolidate joins all successful extractions into one text block, each
// section headed by its source URL. Non-success results are skipped here but
// must be kept by the caller for display and retry affordance.
func Consolidate(results []models.ScrapeResult) string {
	var sections []string
	for _, r := range results {
		if r.Status != models.StatusSuccess {
			continue
		}
		sections = append(sections, fmt.Sprintf("Source: %s\n\n%s", r.URL, r.Content))
	}
	return strings.Join(sections, sectionSeparator)
}

// Labeled joins scrape results with the labels extracted from the source
// text, matching by normalized URL. URLs with no known label are omitted;
// failed fetches keep their status and error so the caller can render a
// per-section outcome.
func Labeled(labels []models.LabeledURL, results []models.ScrapeResult) []models.LabeledScrapeResult {
	byURL := make(map[string]models.ScrapeResult, len(results))
	for _, r := range results {
		byURL[r.URL] = r
	}

	var out []models.LabeledScrapeResult
	for _, l := range labels {
		r, ok := byURL[l.Normalized]
		if !ok {
			continue
		}
		out = append(out, models.LabeledScrapeResult{
			Label:   l.Label,
			URL:     r.URL,
			Status:  r.Status,
			Content: r.Content,
			Error:   r.Error,
		})
	}
	return out
}

// ConsolidateLabeled renders labeled sections as clearly delimited blocks
// instead of an undifferentiated blob. Only successful sections appear.
func ConsolidateLabeled(labeled []models.LabeledScrapeResult) string {
	var sections []string
	for _, l := range labeled {
		if l.Status != models.StatusSuccess {
			continue
		}
		sections = append(sections, fmt.Sprintf("### %s (%s)\n\n%s", l.Label, l.URL, l.Content))
	}
	return strings.Join(sections, sectionSeparator)
}
