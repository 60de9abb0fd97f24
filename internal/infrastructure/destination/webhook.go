package destination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

// Webhook delivers campaigns as JSON to an external marketing-automation endpoint.
type Webhook struct {
	endpoint string
	token    string
	http     *http.Client
}

var _ ports.Platform = (*Webhook)(nil)

// NewWebhook creates a webhook platform; a nil client gets a 15s default.
func NewWebhook(endpoint, token string, client *http.Client) *Webhook {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Webhook{endpoint: endpoint, token: token, http: client}
}

func (w *Webhook) Name() string { return "webhook" }

// CreateCampaign posts the campaign and expects {"campaign_id": "..."} back. Any other fields in
// the reply are kept as the raw platform response.
func (w *Webhook) CreateCampaign(ctx context.Context, content domain.CampaignContent) (domain.PlatformResponse, error) {
	if w.endpoint == "" {
		return domain.PlatformResponse{}, errors.New("webhook endpoint is not configured")
	}

	var raw map[string]any
	if err := w.post(ctx, content, &raw); err != nil {
		return domain.PlatformResponse{}, err
	}

	id, _ := raw["campaign_id"].(string)
	if id == "" {
		return domain.PlatformResponse{Raw: raw}, errors.New("webhook response has no campaign_id")
	}
	return domain.PlatformResponse{Success: true, CampaignID: id, Raw: raw}, nil
}

// Ping issues a HEAD request against the endpoint.
func (w *Webhook) Ping(ctx context.Context) error {
	if w.endpoint == "" {
		return errors.New("webhook endpoint is not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, w.endpoint, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	w.authorize(req)
	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping webhook: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping webhook: unexpected status %s", resp.Status)
	}
	return nil
}

func (w *Webhook) post(ctx context.Context, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	w.authorize(req)

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (w *Webhook) authorize(req *http.Request) {
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}
}
