package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Sender delivers a one-time code to a phone number
type Sender interface {
	Send(ctx context.Context, phone, code string) error
}

// LogSender writes codes to the log. Development only.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, phone, code string) error {
	s.log.Info("OTP generated", zap.String("phone", phone), zap.String("code", code))
	return nil
}

// WebhookSender posts codes to an SMS gateway webhook
type WebhookSender struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewWebhookSender(url string, timeout time.Duration) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *WebhookSender) Send(ctx context.Context, phone, code string) error {
	body, err := json.Marshal(webhookPayload{
		Phone:   phone,
		Message: fmt.Sprintf("Votre code EduPay est %s", code),
		Code:    code,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
	}
	return nil
}
