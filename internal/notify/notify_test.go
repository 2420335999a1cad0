package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWebhookSenderPostsCode(t *testing.T) {
	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, time.Second)
	if err := sender.Send(context.Background(), "+22500000000", "123456"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Phone != "+22500000000" || got.Code != "123456" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestWebhookSenderReportsGatewayFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL, time.Second)
	if err := sender.Send(context.Background(), "+22500000000", "123456"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
