package scraper

import (
	"net/http"
	"strings"

	"github.com/logicaloutcomes/gather/models"
)

// classify maps the last observed attempt failure onto the result taxonomy.
// Structured fields (HTTP status, Retry-After, timeout flag) take precedence;
// message phrasing is only consulted when no structured signal exists.
func classify(target string, last *attemptError) models.ScrapeResult {
	result := models.ScrapeResult{
		URL:    target,
		Status: models.StatusNetworkError,
	}
	if last == nil {
		result.Error = "no relay mechanisms configured"
		return result
	}

	result.Error = last.err.Error()
	result.HTTPStatus = last.httpStatus
	result.ContentType = last.contentType

	msg := strings.ToLower(result.Error)

	switch {
	case last.unsupported:
		result.Status = models.StatusUnsupportedContent

	case last.timeout,
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"),
		strings.Contains(msg, "abort"):
		result.Status = models.StatusTimeout

	case last.httpStatus == http.StatusTooManyRequests,
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"):
		result.Status = models.StatusRateLimited
		if last.retryAfter > 0 {
			result.RetryAfter = int(last.retryAfter.Seconds())
		}

	case last.httpStatus == http.StatusForbidden,
		strings.Contains(msg, "forbidden"),
		strings.Contains(msg, "blocked"):
		result.Status = models.StatusBlocked

	case last.httpStatus == http.StatusNotFound,
		strings.Contains(msg, "not found"):
		result.Status = models.StatusNotFound
	}

	return result
}
