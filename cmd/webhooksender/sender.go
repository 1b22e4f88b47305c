package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

type sender struct {
	client   *http.Client
	cfg      config
	provider signature.Provider
	sent     int
	lastID   string
}

type delivery struct {
	SourceID string
	Status   int
	Body     string
}

func newSender(client *http.Client, cfg config) *sender {
	p, _ := signature.Lookup(cfg.Provider)
	return &sender{client: client, cfg: cfg, provider: p}
}

func (s *sender) endpoint() string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if s.provider.Family == signature.FamilyCommerce {
		return fmt.Sprintf("%s/webhooks/shopify/%s", base, s.cfg.Topic)
	}
	return fmt.Sprintf("%s/webhooks/%s/%s", base, s.provider.Family, s.provider.Key)
}

func (s *sender) payload(sourceID string) ([]byte, error) {
	if s.cfg.InvalidJSON {
		return []byte(`{"id":"` + sourceID + `",`), nil
	}
	eventType := "conversion"
	switch s.provider.Family {
	case signature.FamilyCommerce:
		eventType = s.cfg.Topic + "/create"
	case signature.FamilyCRM:
		eventType = "contact.updated"
	}
	return json.Marshal(map[string]any{
		"id":         sourceID,
		"type":       eventType,
		"provider":   s.provider.Key,
		"occurredAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *sender) send(ctx context.Context) (delivery, error) {
	s.sent++
	sourceID := uuid.NewString()
	if s.cfg.ReplayEvery > 0 && s.lastID != "" && s.sent%s.cfg.ReplayEvery == 0 {
		sourceID = s.lastID
	}
	s.lastID = sourceID

	body, err := s.payload(sourceID)
	if err != nil {
		return delivery{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(body))
	if err != nil {
		return delivery{}, fmt.Errorf("failed to build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set(s.provider.Header, signature.Sign(s.provider.Scheme, s.cfg.Secret, body))
	if len(s.provider.SourceIDHeaders) > 0 {
		request.Header.Set(s.provider.SourceIDHeaders[0], sourceID)
	}

	resp, err := s.client.Do(request)
	if err != nil {
		return delivery{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return delivery{
		SourceID: sourceID,
		Status:   resp.StatusCode,
		Body:     strings.TrimSpace(string(payload)),
	}, nil
}
