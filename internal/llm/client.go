// Package llm provides a client for an OpenAI-compatible chat-completions API.
// The pipeline treats it as a single-turn reasoning service: prompt in, text out.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/campusnotify/noticecrawl/internal/config"
)

// maxErrorBodyBytes limits how much of an error response body is kept for logs.
const maxErrorBodyBytes = 1024

// ErrDisabled indicates the reasoning service is not configured.
var ErrDisabled = errors.New("reasoning service disabled")

// ErrInvalidResponse indicates the service replied with an unparseable body.
var ErrInvalidResponse = errors.New("reasoning service returned invalid response")

// Completer is the single-turn completion contract consumed by the
// scorer and the AI extractor.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client implements Completer against an OpenAI-compatible endpoint.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ Completer = (*Client)(nil)

// NewClient builds a client from configuration. Returns nil when the
// service is unconfigured so callers can fail closed.
func NewClient(cfg config.LLMConfig) *Client {
	if !cfg.Enabled() {
		return nil
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// chatRequest is the chat-completions request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset of the response body the client reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user turn and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", fmt.Errorf("chat API returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	for _, choice := range decoded.Choices {
		if content := choice.Message.Content; content != "" {
			return content, nil
		}
	}
	return "", nil
}
