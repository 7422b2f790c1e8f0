package dispatcher_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campusnotify/noticecrawl/internal/config"
	"github.com/campusnotify/noticecrawl/internal/dispatcher"
)

func messagingConfig(endpoint string) config.MessagingConfig {
	return config.MessagingConfig{
		Endpoint:     endpoint,
		SenderKey:    "sender-key",
		SecretKey:    "secret-key",
		AppKey:       "app-key",
		TemplateCode: "send-article",
		Timeout:      5 * time.Second,
	}
}

func TestAlimtalkClientSend(t *testing.T) {
	var gotPath, gotSecret string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("X-Secret-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := dispatcher.NewAlimtalkClient(messagingConfig(srv.URL))
	err := client.Send(context.Background(), "01012345678", map[string]string{
		"customer-name": "지민",
		"korean-title":  "- AI 채용 공지",
		"article-link":  "https://example.com/1",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotPath != "/alimtalk/v2.2/appkeys/app-key/messages" {
		t.Errorf("path = %q", gotPath)
	}
	if gotSecret != "secret-key" {
		t.Errorf("X-Secret-Key = %q", gotSecret)
	}
	if gotBody["senderKey"] != "sender-key" || gotBody["templateCode"] != "send-article" {
		t.Errorf("unexpected payload: %v", gotBody)
	}
	recipients, ok := gotBody["recipientList"].([]any)
	if !ok || len(recipients) != 1 {
		t.Fatalf("recipientList = %v, want one entry", gotBody["recipientList"])
	}
	first := recipients[0].(map[string]any)
	if first["recipientNo"] != "01012345678" {
		t.Errorf("recipientNo = %v", first["recipientNo"])
	}
}

func TestAlimtalkClientNon200IsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"header":{"isSuccessful":false}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := dispatcher.NewAlimtalkClient(messagingConfig(srv.URL))
	if err := client.Send(context.Background(), "01012345678", nil); err == nil {
		t.Fatal("Send() should fail on non-200 response")
	}
}

func TestAlimtalkClientRequiresConfig(t *testing.T) {
	client := dispatcher.NewAlimtalkClient(config.MessagingConfig{Timeout: time.Second})
	err := client.Send(context.Background(), "01012345678", nil)
	if !errors.Is(err, dispatcher.ErrNotConfigured) {
		t.Fatalf("Send() error = %v, want ErrNotConfigured", err)
	}
}
