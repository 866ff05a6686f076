package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logicaloutcomes/gather/cache"
	"github.com/logicaloutcomes/gather/cleaner"
	"github.com/logicaloutcomes/gather/models"
	"github.com/logicaloutcomes/gather/relay"
	"github.com/logicaloutcomes/gather/scraper"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testScraper(serverURL string) *scraper.Scraper {
	relays := relay.FromConfigs([]relay.Config{
		{Name: "test", Endpoint: serverURL + "/?u=%s", Mode: "raw", Escape: true},
	})
	opts := scraper.Options{
		Timeout:          2 * time.Second,
		AttemptsPerRelay: 1,
		BaseBackoff:      time.Millisecond,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return scraper.New(relays, &http.Client{}, opts, logger)
}

func postJSON(t *testing.T, h gin.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	router := gin.New()
	router.POST(path, h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestFetch_RejectsMissingURL(t *testing.T) {
	conv := cleaner.NewMarkdownConverter()
	w := postJSON(t, Fetch(testScraper("http://127.0.0.1:0"), conv, nil), "/fetch", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestFetch_RejectsUnsafeURL(t *testing.T) {
	conv := cleaner.NewMarkdownConverter()
	w := postJSON(t, Fetch(testScraper("http://127.0.0.1:0"), conv, nil), "/fetch", map[string]any{
		"url": "javascript:alert(1)",
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp models.FetchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v, want INVALID_INPUT", resp.Error)
	}
}

func TestFetch_EndToEnd(t *testing.T) {
	page := `<!DOCTYPE html><html><body><article><p>` +
		strings.Repeat("The program delivered measurable outcomes across every funded site this year. ", 5) +
		`</p></article></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer ts.Close()

	conv := cleaner.NewMarkdownConverter()
	w := postJSON(t, Fetch(testScraper(ts.URL), conv, nil), "/fetch", map[string]any{
		"url": "https://example.org/report",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp models.FetchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("success = false: %+v", resp.Result)
	}
	if !strings.Contains(resp.Result.Content, "measurable outcomes") {
		t.Errorf("content missing page text: %q", resp.Result.Content)
	}
	if resp.Tokens.Estimate == 0 {
		t.Error("token estimate missing")
	}
}

func TestFetch_CacheHit(t *testing.T) {
	conv := cleaner.NewMarkdownConverter()
	cc := cache.New(10)

	key := cache.Key("https://example.org/report", "text")
	cc.Set(key, models.ScrapeResult{
		URL:     "https://example.org/report",
		Status:  models.StatusSuccess,
		Content: "cached report body",
	})

	// Scraper points nowhere; a hit must not touch the network.
	w := postJSON(t, Fetch(testScraper("http://127.0.0.1:0"), conv, cc), "/fetch", map[string]any{
		"url":     "https://example.org/report",
		"max_age": 60000,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp models.FetchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.CacheStatus != "hit" {
		t.Errorf("cache status = %q, want hit", resp.CacheStatus)
	}
	if resp.Result.Content != "cached report body" {
		t.Errorf("content = %q, want cached body", resp.Result.Content)
	}
}

func TestGather_RejectsEmptyInput(t *testing.T) {
	conv := cleaner.NewMarkdownConverter()
	w := postJSON(t, Gather(testScraper("http://127.0.0.1:0"), conv), "/gather", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGather_EndToEnd(t *testing.T) {
	page := `<!DOCTYPE html><html><body><article><p>` +
		strings.Repeat("Annual outcomes and audited financial statements for the reporting year. ", 5) +
		`</p></article></body></html>`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, page)
	}))
	defer ts.Close()

	conv := cleaner.NewMarkdownConverter()
	w := postJSON(t, Gather(testScraper(ts.URL), conv), "/gather", map[string]any{
		"text": "Annual report: https://example.org/2024\nNot a link line.\nBroken: javascript:void(0)",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp models.GatherResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatalf("success = false: %+v", resp.Results)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(resp.Results))
	}
	if len(resp.Labeled) != 1 || resp.Labeled[0].Label != "Annual report" {
		t.Errorf("labeled = %+v, want one section labeled Annual report", resp.Labeled)
	}
	if !strings.Contains(resp.Consolidated, "### Annual report (https://example.org/2024)") {
		t.Errorf("consolidated missing labeled section header:\n%s", resp.Consolidated)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	router := gin.New()
	router.GET("/gather/:id", GetJob())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gather/no-such-job", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
