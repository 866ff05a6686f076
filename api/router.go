package api

import (
	"net/http"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/gin-gonic/gin"
	"github.com/logicaloutcomes/gather/api/handler"
	"github.com/logicaloutcomes/gather/api/middleware"
	"github.com/logicaloutcomes/gather/cache"
	"github.com/logicaloutcomes/gather/config"
	"github.com/logicaloutcomes/gather/models"
	"github.com/logicaloutcomes/gather/scraper"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, conv *converter.Converter, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": models.ErrorDetail{
				Code:    models.ErrCodeInternal,
				Message: "internal server error",
			},
		})
	}))
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health endpoint, no auth required.
	v1.GET("/health", handler.Health(sc, startTime))

	// Protected group: auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single-URL fetch and manual retry.
	protected.POST("/fetch", handler.Fetch(sc, conv, cc))
	protected.POST("/retry", handler.Retry(sc))

	// Wizard boundary: text + URLs in, labeled consolidated content out.
	protected.POST("/gather", handler.Gather(sc, conv))
	protected.POST("/gather/async", handler.GatherAsync(sc, conv))
	protected.GET("/gather/:id", handler.GetJob())

	return r
}
