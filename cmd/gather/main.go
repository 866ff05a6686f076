package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logicaloutcomes/gather/api"
	"github.com/logicaloutcomes/gather/cache"
	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/config"
	"github.com/logicaloutcomes/gather/relay"
	"github.com/logicaloutcomes/gather/scraper"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("gather starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"relays", len(cfg.Relays),
	)

	// ── 3. Build the relay cascade and scraper ──────────────────────
	relays := relay.FromConfigs(cfg.Relays)
	if len(relays) == 0 {
		slog.Error("no usable relay mechanisms configured")
		os.Exit(1)
	}
	sc := scraper.New(relays, relay.NewClient(), scraper.Options{
		Timeout:            cfg.Scraper.Timeout,
		AttemptsPerRelay:   cfg.Scraper.AttemptsPerRelay,
		BaseBackoff:        cfg.Scraper.BaseBackoff,
		RetryAfterFallback: cfg.Scraper.RetryAfterFallback,
		RetryAfterMax:      cfg.Scraper.RetryAfterMax,
		MinContentLength:   cfg.Scraper.MinContentLength,
	}, slog.Default())

	// ── 4. Markdown converter and result cache ──────────────────────
	conv := cleaner.NewMarkdownConverter()
	cc := cache.New(cfg.Cache.MaxEntries)

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(sc, conv, cfg, cc, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	slog.Info("gather stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
