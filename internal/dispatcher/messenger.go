// Package dispatcher delivers pending notifications through the templated
// messaging API and flips records to sent only after a confirmed delivery.
package dispatcher

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

// maxMessagingErrorBytes limits error body snippets kept from the messaging API.
const maxMessagingErrorBytes = 512

// ErrNotConfigured indicates the messaging credentials are missing.
// Credentials are deployment inputs; there are no embedded defaults.
var ErrNotConfigured = errors.New("messaging API is not configured")

// Messenger sends one templated message to one recipient.
type Messenger interface {
	Send(ctx context.Context, recipientNo string, templateParams map[string]string) error
}

// AlimtalkClient implements Messenger against a KakaoTalk Alimtalk-style
// templated messaging endpoint.
type AlimtalkClient struct {
	endpoint     string
	senderKey    string
	secretKey    string
	appKey       string
	templateCode string
	httpClient   *http.Client
}

var _ Messenger = (*AlimtalkClient)(nil)

// NewAlimtalkClient builds the messaging client from configuration.
func NewAlimtalkClient(cfg config.MessagingConfig) *AlimtalkClient {
	return &AlimtalkClient{
		endpoint:     cfg.Endpoint,
		senderKey:    cfg.SenderKey,
		secretKey:    cfg.SecretKey,
		appKey:       cfg.AppKey,
		templateCode: cfg.TemplateCode,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
}

// sendRequest is the messaging API request body.
type sendRequest struct {
	SenderKey     string      `json:"senderKey"`
	TemplateCode  string      `json:"templateCode"`
	RecipientList []recipient `json:"recipientList"`
}

type recipient struct {
	RecipientNo       string            `json:"recipientNo"`
	TemplateParameter map[string]string `json:"templateParameter"`
}

// Send posts one templated message. Only an HTTP 200 counts as delivered.
func (c *AlimtalkClient) Send(ctx context.Context, recipientNo string, templateParams map[string]string) error {
	if c.endpoint == "" || c.senderKey == "" || c.secretKey == "" || c.appKey == "" {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		SenderKey:    c.senderKey,
		TemplateCode: c.templateCode,
		RecipientList: []recipient{
			{RecipientNo: recipientNo, TemplateParameter: templateParams},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/alimtalk/v2.2/appkeys/%s/messages", strings.TrimRight(c.endpoint, "/"), c.appKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("X-Secret-Key", c.secretKey)
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxMessagingErrorBytes))
		return fmt.Errorf("messaging API returned %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return nil
}
