package handler

import (
	"net/http"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gin-gonic/gin"
	"github.com/logicaloutcomes/gather/cache"
	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/models"
	"github.com/logicaloutcomes/gather/scraper"
	"github.com/logicaloutcomes/gather/urls"
)

// Fetch returns a handler for POST /api/v1/fetch.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Normalize the URL; reject invalid candidates up front.
//  3. Serve from cache when the caller allows it.
//  4. Run the relay cascade with the requested output processor.
//  5. Store successes, return the full ScrapeResult either way.
func Fetch(sc *scraper.Scraper, conv *converter.Converter, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.FetchResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		rec := urls.Process(req.URL)
		if !rec.Valid {
			c.JSON(http.StatusBadRequest, models.FetchResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: rec.Error,
				},
			})
			return
		}

		cacheKey := cache.Key(rec.Normalized, req.OutputFormat)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.FetchResponse{
					Success:     true,
					Result:      cached,
					Tokens:      models.TokenInfo{Estimate: cleaner.EstimateTokens(cached.Content)},
					CacheStatus: "hit",
				})
				return
			}
		}

		processor := buildProcessor(conv, req.OutputFormat, req.CSSSelector, req.IncludeTags, req.ExcludeTags)
		result := sc.
			WithTimeout(time.Duration(req.Timeout) * time.Second).
			WithProcessor(processor).
			Fetch(c.Request.Context(), rec.Normalized)

		resp := models.FetchResponse{
			Success: result.Status == models.StatusSuccess,
			Result:  result,
			Tokens:  models.TokenInfo{Estimate: cleaner.EstimateTokens(result.Content)},
		}
		if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, result)
			resp.CacheStatus = "miss"
		}

		c.JSON(http.StatusOK, resp)
	}
}

// buildProcessor assembles the payload processor for the requested output
// format and filters. Returns nil when the default plain-text extraction
// suffices, letting the scraper keep its stock pipeline.
func buildProcessor(conv *converter.Converter, format, cssSelector string, include, exclude []string) scraper.Processor {
	if format != "markdown" && cssSelector == "" && len(include) == 0 && len(exclude) == 0 {
		return nil
	}

	return func(payload, target string) (string, bool) {
		if cssSelector != "" {
			if filtered, err := cleaner.ApplyCSSSelector(payload, cssSelector); err == nil {
				payload = filtered
			}
		}
		payload = cleaner.FilterContent(payload, include, exclude)

		if format == "markdown" {
			if md, err := cleaner.ToMarkdown(conv, payload, target); err == nil {
				return cleaner.Cap(md)
			}
			// Conversion failure degrades to plain text, never fails the fetch.
		}
		return cleaner.Extract(payload, target)
	}
}
