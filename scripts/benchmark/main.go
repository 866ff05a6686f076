package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Gather API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering common nonprofit-source page types.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Static", "https://example.com"},
	{"Blog", "https://go.dev/blog/go1.21"},
	{"Docs", "https://go.dev/doc/effective_go"},
	{"News", "https://www.bbc.com/news"},
	{"NotFound", "https://example.com/definitely-missing-page"},
}

// --- Request / Response types (mirrors models package) ---

type fetchRequest struct {
	URL          string `json:"url"`
	OutputFormat string `json:"output_format"`
	Timeout      int    `json:"timeout"`
}

type fetchResponse struct {
	Success bool `json:"success"`
	Result  struct {
		Status    string `json:"status"`
		Content   string `json:"content"`
		Error     string `json:"error"`
		Proxy     string `json:"proxy"`
		ElapsedMs int64  `json:"elapsed_ms"`
		Truncated bool   `json:"truncated"`
	} `json:"result"`
	Tokens struct {
		Estimate int `json:"estimate"`
	} `json:"tokens"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Benchmark result types ---

type runResult struct {
	Run           int    `json:"run"`
	ElapsedMs     int64  `json:"elapsed_ms"`
	Status        string `json:"status"`
	Proxy         string `json:"proxy"`
	Tokens        int    `json:"tokens"`
	ContentLength int    `json:"content_length"`
	Truncated     bool   `json:"truncated"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

type urlAverages struct {
	ElapsedMs     float64 `json:"elapsed_ms"`
	Tokens        float64 `json:"tokens"`
	ContentLength float64 `json:"content_length"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	fmt.Println("=== Gather Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure gather is running (e.g. make run)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  %dms  via %s  ~%d tokens\n", rr.ElapsedMs, rr.Proxy, rr.Tokens)
			} else {
				fmt.Printf("%s: %s\n", strings.ToUpper(rr.Status), rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	// Print summary table.
	printTable(report.Results)

	// Write JSON report.
	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	reqBody := fetchRequest{
		URL:          url,
		OutputFormat: "text",
		Timeout:      30,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/v1/fetch", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var fr fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = fr.Success
	rr.Status = fr.Result.Status
	rr.Proxy = fr.Result.Proxy
	rr.ElapsedMs = fr.Result.ElapsedMs
	rr.Tokens = fr.Tokens.Estimate
	rr.ContentLength = len(fr.Result.Content)
	rr.Truncated = fr.Result.Truncated

	if fr.Error != nil {
		rr.Error = fr.Error.Message
	} else if fr.Result.Error != "" {
		rr.Error = fr.Result.Error
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.ElapsedMs += float64(r.ElapsedMs)
		avg.Tokens += float64(r.Tokens)
		avg.ContentLength += float64(r.ContentLength)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.ElapsedMs /= n
	avg.Tokens /= n
	avg.ContentLength /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tTokens\tContent Len\tRelay\n")
	fmt.Fprintf(w, "───\t───────────\t──────\t───────────\t─────\n")

	for _, r := range results {
		if r.Averages == nil {
			status := "FAILED"
			if len(r.Runs) > 0 && r.Runs[0].Status != "" {
				status = r.Runs[0].Status
			}
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\n", truncateURL(r.URL, 40), status)
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%s\t%s\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.ElapsedMs),
			formatInt(int(r.Averages.Tokens)),
			formatInt(int(r.Averages.ContentLength)),
			dominantProxy(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantProxy(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success {
			counts[r.Proxy]++
		}
	}
	best, bestCount := "-", 0
	for proxy, count := range counts {
		if count > bestCount {
			best = proxy
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
