package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gin-gonic/gin"
	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/compose"
	"github.com/logicaloutcomes/gather/models"
	"github.com/logicaloutcomes/gather/scraper"
	"github.com/logicaloutcomes/gather/urls"
	"github.com/logicaloutcomes/gather/webhook"
)

// jobStore holds all in-flight and completed gather jobs.
var jobStore sync.Map

func init() {
	// Background goroutine to expire jobs older than 1 hour.
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour).Unix()
			jobStore.Range(func(key, value any) bool {
				job := value.(*models.GatherJob)
				if job.CreatedAt < cutoff {
					jobStore.Delete(key)
				}
				return true
			})
		}
	}()
}

// Gather returns a handler for POST /api/v1/gather: the synchronous wizard
// boundary. Free text and explicit URLs go in; per-URL results, labeled
// sections, and the consolidated block come out.
func Gather(sc *scraper.Scraper, conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindGatherRequest(c)
		if !ok {
			return
		}

		resp := runGather(c.Request.Context(), sc, conv, req, nil)
		c.JSON(http.StatusOK, resp)
	}
}

// GatherAsync returns a handler for POST /api/v1/gather/async. It creates a
// job, launches the gather in the background, and returns the job id
// immediately. Progress is observable via GetJob; completion optionally
// triggers a signed webhook.
func GatherAsync(sc *scraper.Scraper, conv *converter.Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindGatherRequest(c)
		if !ok {
			return
		}

		extracted := urls.ExtractAndNormalize(req.Text, req.URLs)
		total := 0
		for _, rec := range extracted {
			if rec.Valid {
				total++
			}
		}

		jobID := "gather-" + randomID()
		job := &models.GatherJob{
			ID:            jobID,
			Status:        "processing",
			Total:         total,
			CreatedAt:     time.Now().Unix(),
			WebhookURL:    req.WebhookURL,
			WebhookSecret: req.WebhookSecret,
		}
		jobStore.Store(jobID, job)

		go func() {
			var completed atomic.Int32
			resp := runGather(context.Background(), sc, conv, req, func(int, models.ScrapeResult) {
				job.Completed = int(completed.Add(1))
			})

			job.Response = resp
			job.Completed = job.Total
			job.Status = jobStatus(resp)

			slog.Info("gather job finished",
				"id", job.ID, "status", job.Status, "total", job.Total)

			if job.WebhookURL != "" {
				webhook.DeliverAsync(job.WebhookURL, job.WebhookSecret, &webhook.Event{
					Type:      "gather.completed",
					JobID:     job.ID,
					Timestamp: time.Now().Unix(),
					Data:      resp,
				})
			}
		}()

		c.JSON(http.StatusOK, models.JobResponse{
			ID:     jobID,
			Status: "processing",
			Total:  total,
		})
	}
}

// GetJob returns a handler for GET /api/v1/gather/:id.
func GetJob() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("id")
		val, ok := jobStore.Load(jobID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "gather job not found",
				},
			})
			return
		}

		job := val.(*models.GatherJob)
		c.JSON(http.StatusOK, models.JobStatusResponse{
			ID:        job.ID,
			Status:    job.Status,
			Completed: job.Completed,
			Total:     job.Total,
			Response:  job.Response,
		})
	}
}

// Retry returns a handler for POST /api/v1/retry: re-submission of one
// previously failed URL as an isolated single-element batch, bypassing the
// cache so the caller gets a genuinely fresh attempt.
func Retry(sc *scraper.Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RetryRequest
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

		results := sc.
			WithTimeout(time.Duration(req.Timeout) * time.Second).
			FetchAll(c.Request.Context(), []string{rec.Normalized}, scraper.BatchOptions{Concurrency: 1})

		result := results[0]
		c.JSON(http.StatusOK, models.FetchResponse{
			Success: result.Status == models.StatusSuccess,
			Result:  result,
			Tokens:  models.TokenInfo{Estimate: cleaner.EstimateTokens(result.Content)},
		})
	}
}

// bindGatherRequest parses and validates the shared gather payload.
func bindGatherRequest(c *gin.Context) (models.GatherRequest, bool) {
	var req models.GatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.GatherResponse{
			Error: models.NewGatherError(models.ErrCodeInvalidInput, err.Error(), err).ToDetail(),
		})
		return req, false
	}
	if req.Text == "" && len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, models.GatherResponse{
			Error: models.NewGatherError(models.ErrCodeInvalidInput, "provide text, urls, or both", nil).ToDetail(),
		})
		return req, false
	}
	req.Defaults()
	return req, true
}

// runGather executes the full acquisition pipeline: discover and normalize
// URLs, preserve labels, fetch through the cascade in bounded batches, and
// compose the consolidated output.
func runGather(ctx context.Context, sc *scraper.Scraper, conv *converter.Converter, req models.GatherRequest, onProgress scraper.BatchProgress) *models.GatherResponse {
	extracted := urls.ExtractAndNormalize(req.Text, req.URLs)
	labels := urls.ExtractLabeled(req.Text)

	var targets []string
	var invalid []models.ExtractedURL
	for _, rec := range extracted {
		if rec.Valid {
			targets = append(targets, rec.Normalized)
		} else {
			invalid = append(invalid, rec)
		}
	}

	processor := buildProcessor(conv, req.OutputFormat, "", nil, nil)
	results := sc.
		WithTimeout(time.Duration(req.Timeout) * time.Second).
		WithProcessor(processor).
		FetchAll(ctx, targets, scraper.BatchOptions{
			Concurrency: req.Concurrency,
			OnProgress:  onProgress,
		})

	labeled := compose.Labeled(labels, results)

	succeeded := 0
	for _, r := range results {
		if r.Status == models.StatusSuccess {
			succeeded++
		}
	}

	// Labeled section rendering applies only when every success has a label;
	// otherwise URL-headed sections keep unlabeled successes visible.
	labeledSuccesses := 0
	for _, l := range labeled {
		if l.Status == models.StatusSuccess {
			labeledSuccesses++
		}
	}
	var consolidated string
	if succeeded > 0 && labeledSuccesses == succeeded {
		consolidated = compose.ConsolidateLabeled(labeled)
	} else {
		consolidated = compose.Consolidate(results)
	}

	return &models.GatherResponse{
		Success:      len(targets) == 0 || succeeded > 0,
		Results:      results,
		Labeled:      labeled,
		Consolidated: consolidated,
		Invalid:      invalid,
		Tokens:       models.TokenInfo{Estimate: cleaner.EstimateTokens(consolidated)},
	}
}

// jobStatus summarizes a finished gather for the job record.
func jobStatus(resp *models.GatherResponse) string {
	total := len(resp.Results)
	succeeded := 0
	for _, r := range resp.Results {
		if r.Status == models.StatusSuccess {
			succeeded++
		}
	}
	switch {
	case total == 0:
		return "completed"
	case succeeded == 0:
		return "failed"
	case succeeded < total:
		return "partial"
	default:
		return "completed"
	}
}

// randomID generates a short random hex string for job IDs.
func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
