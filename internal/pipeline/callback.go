package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/campusnotify/noticecrawl/internal/domain"
)

// callbackPayload mirrors the body accepted by POST /callback/save.
type callbackPayload struct {
	UserID int64                       `json:"userId"`
	Data   []domain.NotificationRecord `json:"data"`
}

// deliverCallback posts the cycle's records to the caller-supplied URL.
// Best-effort: failures are logged, never surfaced as the cycle error.
func (p *Pipeline) deliverCallback(ctx context.Context, req CrawlRequest, records []domain.NotificationRecord) {
	body, err := json.Marshal(callbackPayload{UserID: req.UserID, Data: records})
	if err != nil {
		p.log.Warn("failed to marshal callback payload", "error", err)
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Callback.URL, bytes.NewReader(body))
	if err != nil {
		p.log.Warn("failed to create callback request", "url", req.Callback.URL, "error", err)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Callback.AuthToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Callback.AuthToken)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.log.Warn("callback delivery failed", "url", req.Callback.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.log.Warn("callback rejected", "url", req.Callback.URL, "status", resp.Status)
		return
	}
	p.log.Info("callback delivered", "url", req.Callback.URL, "count", len(records))
}
