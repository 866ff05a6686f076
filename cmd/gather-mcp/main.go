// Command gather-mcp exposes the gather engine as MCP tools over stdio,
// proxying to a running gather HTTP service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// fetchRequest mirrors the gather API fetch request model.
type fetchRequest struct {
	URL          string `json:"url"`
	OutputFormat string `json:"output_format,omitempty"`
}

// fetchResponse mirrors the gather API fetch response model.
type fetchResponse struct {
	Success bool `json:"success"`
	Result  struct {
		URL       string `json:"url"`
		Status    string `json:"status"`
		Content   string `json:"content"`
		Error     string `json:"error"`
		Proxy     string `json:"proxy"`
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

// gatherRequest mirrors the gather API gather request model.
type gatherRequest struct {
	Text         string   `json:"text,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	OutputFormat string   `json:"output_format,omitempty"`
}

// gatherResponse mirrors the gather API gather response model.
type gatherResponse struct {
	Success bool `json:"success"`
	Results []struct {
		URL    string `json:"url"`
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"results"`
	Labeled []struct {
		Label  string `json:"label"`
		URL    string `json:"url"`
		Status string `json:"status"`
	} `json:"labeled"`
	Consolidated string `json:"consolidated"`
	Invalid      []struct {
		Original string `json:"original"`
		Error    string `json:"error"`
	} `json:"invalid"`
	Tokens struct {
		Estimate int `json:"estimate"`
	} `json:"tokens"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	apiURL := os.Getenv("GATHER_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("GATHER_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "GATHER_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"gather",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	fetchPageTool := mcp.NewTool("fetch_page",
		mcp.WithDescription("Fetch one web page through the relay cascade and return its cleaned main text. Failures are classified (timeout, rate_limited, blocked, not_found, unsupported_content, network_error)."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to fetch"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(fetchPageTool, handleFetchPage(apiURL, apiKey))

	gatherSourcesTool := mcp.NewTool("gather_sources",
		mcp.WithDescription("Discover URLs in free text (preserving 'label: URL' context), fetch them all with bounded concurrency, and return one consolidated labeled text block."),
		mcp.WithString("text",
			mcp.Description("Free text that may contain URLs with context labels"),
		),
		mcp.WithArray("urls",
			mcp.Description("Explicit additional URLs to include"),
		),
		mcp.WithString("output_format",
			mcp.Description("Consolidated block format: 'text' (default) or 'markdown'"),
			mcp.Enum("text", "markdown"),
		),
	)
	s.AddTool(gatherSourcesTool, handleGatherSources(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the gather API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func handleFetchPage(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		outputFormat := request.GetString("output_format", "")

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/fetch", fetchRequest{
			URL:          url,
			OutputFormat: outputFormat,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fetch request failed: %v", err)), nil
		}

		var fr fetchResponse
		if err := json.Unmarshal(respBody, &fr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if fr.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", fr.Error.Code, fr.Error.Message)), nil
		}
		if !fr.Success {
			return mcp.NewToolResultError(fmt.Sprintf("fetch failed (%s): %s", fr.Result.Status, fr.Result.Error)), nil
		}

		result := fmt.Sprintf("Source: %s (via %s)\n\n%s", fr.Result.URL, fr.Result.Proxy, fr.Result.Content)
		if fr.Result.Truncated {
			result += "\n\n(Content was truncated at the size cap.)"
		}
		result += fmt.Sprintf("\n\n---\nTokens: ~%d", fr.Tokens.Estimate)

		return mcp.NewToolResultText(result), nil
	}
}

func handleGatherSources(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text := request.GetString("text", "")
		urls := request.GetStringSlice("urls", nil)
		if text == "" && len(urls) == 0 {
			return mcp.NewToolResultError("provide text, urls, or both"), nil
		}
		outputFormat := request.GetString("output_format", "")

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/gather", gatherRequest{
			Text:         text,
			URLs:         urls,
			OutputFormat: outputFormat,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("gather request failed: %v", err)), nil
		}

		var gr gatherResponse
		if err := json.Unmarshal(respBody, &gr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if gr.Error != nil {
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", gr.Error.Code, gr.Error.Message)), nil
		}

		var sb strings.Builder
		succeeded := 0
		for _, r := range gr.Results {
			if r.Status == "success" {
				succeeded++
			}
		}
		sb.WriteString(fmt.Sprintf("Gathered %d/%d sources (~%d tokens)\n\n", succeeded, len(gr.Results), gr.Tokens.Estimate))

		for _, r := range gr.Results {
			if r.Status != "success" {
				sb.WriteString(fmt.Sprintf("- skipped %s (%s): %s\n", r.URL, r.Status, r.Error))
			}
		}
		for _, inv := range gr.Invalid {
			sb.WriteString(fmt.Sprintf("- invalid %q: %s\n", inv.Original, inv.Error))
		}
		if gr.Consolidated != "" {
			sb.WriteString("\n")
			sb.WriteString(gr.Consolidated)
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}
