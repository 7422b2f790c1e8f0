package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/campusnotify/noticecrawl/internal/config"
)

// maxRenderErrorBytes limits error body snippets kept from the render service.
const maxRenderErrorBytes = 512

// RenderFetcher acquires page content through an external JS-rendering
// service: the page is loaded in a headless browser on the service side and
// returned as readable markdown.
type RenderFetcher struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ Fetcher = (*RenderFetcher)(nil)

// NewRenderFetcher builds the render strategy from configuration.
func NewRenderFetcher(cfg config.FetcherConfig) *RenderFetcher {
	return &RenderFetcher{
		endpoint:   cfg.RenderURL,
		apiKey:     cfg.RenderAPIKey,
		httpClient: &http.Client{Timeout: cfg.RenderTimeout},
	}
}

// scrapeRequest is the render-service request body.
type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

// scrapeResponse is the subset of the render-service response the fetcher reads.
type scrapeResponse struct {
	Data struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Fetch asks the render service to load the page and return markdown.
func (f *RenderFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	body, err := json.Marshal(scrapeRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return "", fmt.Errorf("failed to marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create scrape request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("render service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxRenderErrorBytes))
		return "", fmt.Errorf("render service returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode render response: %w", err)
	}
	if decoded.Data.Markdown == "" {
		return "", fmt.Errorf("render service returned no markdown for %s", pageURL)
	}
	return decoded.Data.Markdown, nil
}
