package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
	"github.com/fr0stylo/webhookd/internal/observability"
	"github.com/fr0stylo/webhookd/internal/webhooks/replay"
	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

const (
	maxSnippetBytes  = 512
	defaultListLimit = 50
	maxListLimit     = 500
)

var payloadTypeFields = []string{"type", "event", "event_type", "topic", "object"}

// WebhookIngestService verifies, de-duplicates and records inbound webhooks.
type WebhookIngestService struct {
	store        ports.WebhookStore
	verifier     *signature.Verifier
	guard        *replay.Guard
	notifier     ports.DeadLetterNotifier
	log          *slog.Logger
	metrics      ingestionMetrics
	replayWindow time.Duration
	now          func() time.Time
}

// IngestConfig tunes the ingestion service.
type IngestConfig struct {
	ReplayWindow time.Duration
	Now          func() time.Time
}

// Delivery is transport-agnostic webhook ingestion input.
type Delivery struct {
	Family  signature.Family
	Segment string
	Headers http.Header
	Body    []byte
}

// Accepted is returned for a delivery that passed every check.
type Accepted struct {
	Accepted    bool                `json:"accepted"`
	Event       domain.WebhookEvent `json:"event"`
	PayloadType string              `json:"payloadType"`
}

// NewWebhookIngestService constructs an ingestion service. A nil notifier disables publishing.
func NewWebhookIngestService(
	store ports.WebhookStore,
	verifier *signature.Verifier,
	guard *replay.Guard,
	notifier ports.DeadLetterNotifier,
	log *slog.Logger,
	cfg IngestConfig,
) *WebhookIngestService {
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &WebhookIngestService{
		store:        store,
		verifier:     verifier,
		guard:        guard,
		notifier:     notifier,
		log:          log.With("component", "webhooks.ingest"),
		metrics:      newIngestionMetrics(),
		replayWindow: cfg.ReplayWindow,
		now:          now,
	}
}

// ResolveDelivery maps an endpoint family and path segment to a provider and event type.
func ResolveDelivery(family signature.Family, segment string) (signature.Provider, string, error) {
	segment = strings.ToLower(strings.TrimSpace(segment))
	switch family {
	case signature.FamilyCommerce:
		if _, ok := signature.CommerceTopics[segment]; !ok {
			return signature.Provider{}, "", apperr.ErrTopicUnsupported.WithDetails(map[string]any{
				"topic":     segment,
				"supported": []string{"orders", "refunds", "products"},
			})
		}
		p, _ := signature.Lookup("shopify")
		return p, segment, nil
	case signature.FamilyConversions:
		if p, ok := signature.InFamily(segment, family); ok {
			return p, "conversion", nil
		}
		return signature.Provider{}, "", apperr.ErrProviderUnsupported.WithDetails(map[string]any{
			"provider":  segment,
			"supported": []string{"meta", "google"},
		})
	case signature.FamilyCRM:
		if p, ok := signature.InFamily(segment, family); ok {
			return p, "crm", nil
		}
		return signature.Provider{}, "", apperr.ErrProviderUnsupported.WithDetails(map[string]any{
			"provider":  segment,
			"supported": []string{"hubspot", "salesforce"},
		})
	default:
		return signature.Provider{}, "", apperr.ErrProviderUnsupported
	}
}

// Ingest runs routing, signature, replay and parse checks and records the outcome.
func (s *WebhookIngestService) Ingest(ctx context.Context, d Delivery) (Accepted, error) {
	provider, eventType, err := ResolveDelivery(d.Family, d.Segment)
	if err != nil {
		return Accepted{}, err
	}
	ctx = observability.WithWebhookIdentity(ctx, provider.Key, eventType)
	s.metrics.recordRequest(ctx, provider.Key)

	sum := sha256.Sum256(d.Body)
	event := domain.WebhookEvent{
		ID:          uuid.NewString(),
		Provider:    provider.Key,
		EventType:   eventType,
		SourceID:    sourceID(d.Headers, provider),
		ReceivedAt:  s.now().UTC(),
		PayloadHash: hex.EncodeToString(sum[:]),
		PayloadSize: len(d.Body),
	}

	header := strings.TrimSpace(d.Headers.Get(provider.Header))
	if header == "" {
		return Accepted{}, s.reject(ctx, event, apperr.ErrSignatureInvalid.WithMessage(
			fmt.Sprintf("missing %s header", provider.Header)))
	}

	verification := s.verifier.Verify(provider.Key, d.Body, header)
	if !verification.Verified {
		return Accepted{}, s.reject(ctx, event, apperr.ErrSignatureInvalid.WithDetails(map[string]any{
			"scheme": verification.Scheme,
		}))
	}

	if event.SourceID != "" {
		key := replay.Key(provider.Key, eventType, event.SourceID)
		registration, err := s.guard.Register(ctx, key, s.replayWindow)
		if err != nil {
			return Accepted{}, s.reject(ctx, event, apperr.Internal(fmt.Errorf("register replay key: %w", err)))
		}
		if registration.Duplicate {
			return Accepted{}, s.reject(ctx, event, apperr.ErrReplayDetected.WithDetails(map[string]any{
				"sourceId":  event.SourceID,
				"expiresAt": registration.ExpiresAt,
			}))
		}
	}

	var payload any
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		rejection := apperr.ErrPayloadInvalid.Wrap(err)
		s.deadLetter(ctx, event, rejection.Code, d.Body)
		return Accepted{}, s.reject(ctx, event, rejection)
	}

	event.Status = domain.WebhookAccepted
	if err := s.store.AppendEvent(ctx, event); err != nil {
		return Accepted{}, apperr.Internal(fmt.Errorf("append webhook event: %w", err))
	}
	s.metrics.recordAccepted(ctx, provider.Key)
	s.log.InfoContext(ctx, "webhook accepted",
		"event_id", event.ID,
		"provider", event.Provider,
		"event_type", event.EventType,
		"scheme", verification.Scheme,
	)

	return Accepted{Accepted: true, Event: event, PayloadType: payloadType(payload, eventType)}, nil
}

// ListEvents returns the ingestion log, most recent first.
func (s *WebhookIngestService) ListEvents(ctx context.Context, filter domain.WebhookEventFilter) ([]domain.WebhookEvent, error) {
	switch filter.Status {
	case "", domain.WebhookAccepted, domain.WebhookRejected:
	default:
		return nil, apperr.ErrValidation.WithMessage("status must be accepted or rejected")
	}
	filter.Provider = strings.ToLower(strings.TrimSpace(filter.Provider))
	filter.Limit = normalizeLimit(filter.Limit)
	events, err := s.store.ListEvents(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list webhook events: %w", err))
	}
	return events, nil
}

// ListDeadLetters returns webhook dead letters, most recent first.
func (s *WebhookIngestService) ListDeadLetters(ctx context.Context, filter domain.WebhookDeadLetterFilter) ([]domain.WebhookDeadLetter, error) {
	filter.Provider = strings.ToLower(strings.TrimSpace(filter.Provider))
	filter.Reason = strings.TrimSpace(filter.Reason)
	filter.Limit = normalizeLimit(filter.Limit)
	entries, err := s.store.ListDeadLetters(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("list webhook dead letters: %w", err))
	}
	return entries, nil
}

func (s *WebhookIngestService) reject(ctx context.Context, event domain.WebhookEvent, rejection *apperr.Error) error {
	event.Status = domain.WebhookRejected
	event.Reason = rejection.Code
	if err := s.store.AppendEvent(ctx, event); err != nil {
		s.log.ErrorContext(ctx, "record rejected webhook failed", "event_id", event.ID, "error", err)
	}
	s.metrics.recordRejected(ctx, event.Provider, rejection.Code)
	s.log.WarnContext(ctx, "webhook rejected",
		"event_id", event.ID,
		"provider", event.Provider,
		"event_type", event.EventType,
		"reason", rejection.Code,
	)
	return rejection
}

func (s *WebhookIngestService) deadLetter(ctx context.Context, event domain.WebhookEvent, reason string, body []byte) {
	entry := domain.WebhookDeadLetter{
		ID:             uuid.NewString(),
		Provider:       event.Provider,
		EventType:      event.EventType,
		ReceivedAt:     event.ReceivedAt,
		Reason:         reason,
		PayloadSnippet: payloadSnippet(body),
	}
	if err := s.store.AppendDeadLetter(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "record webhook dead letter failed", "event_id", event.ID, "error", err)
		return
	}
	s.metrics.recordDeadLetter(ctx, entry.Provider, reason)
	s.log.WarnContext(ctx, "webhook dead-lettered",
		"dead_letter_id", entry.ID,
		"provider", entry.Provider,
		"reason", reason,
	)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.WebhookDeadLettered(ctx, entry); err != nil {
		s.log.WarnContext(ctx, "publish webhook dead letter failed", "dead_letter_id", entry.ID, "error", err)
	}
}

func sourceID(headers http.Header, provider signature.Provider) string {
	for _, name := range provider.SourceIDCandidates() {
		if value := strings.TrimSpace(headers.Get(name)); value != "" {
			return value
		}
	}
	return ""
}

func payloadType(payload any, fallback string) string {
	object, ok := payload.(map[string]any)
	if !ok {
		return fallback
	}
	for _, field := range payloadTypeFields {
		if value, ok := object[field].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return fallback
}

func payloadSnippet(body []byte) string {
	if len(body) <= maxSnippetBytes {
		return string(body)
	}
	cut := maxSnippetBytes
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return string(body[:cut])
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// IsRejection reports whether err is an expected webhook rejection rather than a fault.
func IsRejection(err error) bool {
	return errors.Is(err, apperr.ErrSignatureInvalid) ||
		errors.Is(err, apperr.ErrReplayDetected) ||
		errors.Is(err, apperr.ErrPayloadInvalid)
}
