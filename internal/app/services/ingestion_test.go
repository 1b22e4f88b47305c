package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fr0stylo/webhookd/internal/adapters/memory"
	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/domain"
	portmocks "github.com/fr0stylo/webhookd/internal/app/ports/mocks"
	"github.com/fr0stylo/webhookd/internal/webhooks/replay"
	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

const shopifySecret = "shopify-test-secret"

type ingestFixture struct {
	svc      *WebhookIngestService
	store    *memory.WebhookStore
	notifier *portmocks.MockDeadLetterNotifier
	now      time.Time
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		store:    memory.NewWebhookStore(),
		notifier: portmocks.NewMockDeadLetterNotifier(t),
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	verifier := signature.NewVerifier(map[string]string{
		"shopify": shopifySecret,
		"meta":    "meta-test-secret",
		"hubspot": "hubspot-test-secret",
	})
	guard := replay.NewGuard(replay.NewMemoryStore(), replay.DefaultWindow, replay.WithClock(clock))
	f.svc = NewWebhookIngestService(f.store, verifier, guard, f.notifier, nil, IngestConfig{Now: clock})
	return f
}

func shopifyDelivery(topic, body, sourceID string) Delivery {
	headers := http.Header{}
	headers.Set("X-Shopify-Hmac-Sha256", signature.Sign(signature.SchemeBase64HMACSHA256, shopifySecret, []byte(body)))
	if sourceID != "" {
		headers.Set("X-Shopify-Webhook-Id", sourceID)
	}
	return Delivery{Family: signature.FamilyCommerce, Segment: topic, Headers: headers, Body: []byte(body)}
}

func TestIngest_ShopifyValidSignatureAccepted(t *testing.T) {
	f := newIngestFixture(t)

	got, err := f.svc.Ingest(context.Background(), shopifyDelivery("orders", `{"id":1,"topic":"orders/create"}`, "wh-1"))
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if !got.Accepted {
		t.Fatal("expected accepted delivery")
	}
	if got.Event.Provider != "shopify" || got.Event.EventType != "orders" {
		t.Fatalf("unexpected routing: provider=%q eventType=%q", got.Event.Provider, got.Event.EventType)
	}
	if got.PayloadType != "orders/create" {
		t.Fatalf("got=%q want=%q", got.PayloadType, "orders/create")
	}
	if got.Event.SourceID != "wh-1" || got.Event.Status != domain.WebhookAccepted {
		t.Fatalf("unexpected event: %+v", got.Event)
	}
	if len(got.Event.PayloadHash) != 64 {
		t.Fatalf("expected hex sha256 payload hash, got %q", got.Event.PayloadHash)
	}
}

func TestIngest_WrongSignatureRejectedWithoutDeadLetter(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	delivery := shopifyDelivery("orders", `{"id":1}`, "wh-1")
	delivery.Headers.Set("X-Shopify-Hmac-Sha256", signature.Sign(signature.SchemeBase64HMACSHA256, "wrong-secret", delivery.Body))

	_, err := f.svc.Ingest(ctx, delivery)
	if !errors.Is(err, apperr.ErrSignatureInvalid) {
		t.Fatalf("expected signature error, got %v", err)
	}

	events, _ := f.svc.ListEvents(ctx, domain.WebhookEventFilter{})
	if len(events) != 1 || events[0].Status != domain.WebhookRejected {
		t.Fatalf("expected one rejected event, got %+v", events)
	}
	if events[0].Reason != apperr.CodeSignatureInvalid {
		t.Fatalf("got=%q want=%q", events[0].Reason, apperr.CodeSignatureInvalid)
	}
	deadLetters, _ := f.svc.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(deadLetters) != 0 {
		t.Fatalf("expected no dead letters, got %d", len(deadLetters))
	}
}

type failingReplayStore struct{ err error }

func (s failingReplayStore) Reserve(context.Context, string, time.Time, time.Time) (bool, time.Time, error) {
	return false, time.Time{}, s.err
}

func TestIngest_ReplayStoreFailureStillRecordsEvent(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	verifier := signature.NewVerifier(map[string]string{"shopify": shopifySecret})
	guard := replay.NewGuard(failingReplayStore{err: errors.New("redis down")}, replay.DefaultWindow)
	svc := NewWebhookIngestService(f.store, verifier, guard, f.notifier, nil, IngestConfig{})

	_, err := svc.Ingest(ctx, shopifyDelivery("orders", `{"id":1}`, "wh-1"))
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Code != apperr.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	events, _ := svc.ListEvents(ctx, domain.WebhookEventFilter{})
	if len(events) != 1 || events[0].Status != domain.WebhookRejected {
		t.Fatalf("expected one rejected event, got %+v", events)
	}
	if events[0].Reason != apperr.CodeInternal {
		t.Fatalf("got=%q want=%q", events[0].Reason, apperr.CodeInternal)
	}
	deadLetters, _ := svc.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(deadLetters) != 0 {
		t.Fatalf("expected no dead letters, got %d", len(deadLetters))
	}
}

func TestIngest_MissingSignatureHeaderRejected(t *testing.T) {
	f := newIngestFixture(t)

	delivery := Delivery{
		Family:  signature.FamilyCRM,
		Segment: "hubspot",
		Headers: http.Header{},
		Body:    []byte(`{}`),
	}
	_, err := f.svc.Ingest(context.Background(), delivery)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401 app error, got %v", err)
	}
	if !strings.Contains(appErr.Message, "x-hubspot-signature") {
		t.Fatalf("expected header name in message, got %q", appErr.Message)
	}
}

func TestIngest_ReplayWithinWindowRejected(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	body := `{"id":42}`

	if _, err := f.svc.Ingest(ctx, shopifyDelivery("refunds", body, "dup-1")); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	_, err := f.svc.Ingest(ctx, shopifyDelivery("refunds", body, "dup-1"))
	if !errors.Is(err, apperr.ErrReplayDetected) {
		t.Fatalf("expected replay error, got %v", err)
	}

	events, _ := f.svc.ListEvents(ctx, domain.WebhookEventFilter{})
	if len(events) != 2 {
		t.Fatalf("got=%d want=2 events", len(events))
	}
	if events[0].Status != domain.WebhookRejected || events[1].Status != domain.WebhookAccepted {
		t.Fatalf("unexpected statuses: newest=%s oldest=%s", events[0].Status, events[1].Status)
	}
	deadLetters, _ := f.svc.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(deadLetters) != 0 {
		t.Fatalf("expected no dead letters, got %d", len(deadLetters))
	}

	f.now = f.now.Add(replay.DefaultWindow + time.Second)
	if _, err := f.svc.Ingest(ctx, shopifyDelivery("refunds", body, "dup-1")); err != nil {
		t.Fatalf("delivery after window should pass, got %v", err)
	}
}

func TestIngest_WithoutSourceIDSkipsReplayCheck(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.Ingest(ctx, shopifyDelivery("products", `{"id":7}`, "")); err != nil {
			t.Fatalf("delivery %d failed: %v", i, err)
		}
	}
}

func TestIngest_MalformedJSONDeadLettered(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()
	f.notifier.EXPECT().
		WebhookDeadLettered(mock.Anything, mock.MatchedBy(func(entry domain.WebhookDeadLetter) bool {
			return entry.Provider == "shopify" && entry.Reason == apperr.CodePayloadInvalid
		})).
		Return(nil).
		Once()

	_, err := f.svc.Ingest(ctx, shopifyDelivery("orders", `{"id":`, "bad-1"))
	if !errors.Is(err, apperr.ErrPayloadInvalid) {
		t.Fatalf("expected payload error, got %v", err)
	}

	events, _ := f.svc.ListEvents(ctx, domain.WebhookEventFilter{Status: domain.WebhookRejected})
	if len(events) != 1 || events[0].Reason != apperr.CodePayloadInvalid {
		t.Fatalf("expected one rejected payload event, got %+v", events)
	}
	deadLetters, _ := f.svc.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(deadLetters) != 1 {
		t.Fatalf("got=%d want=1 dead letters", len(deadLetters))
	}
	if deadLetters[0].PayloadSnippet != `{"id":` {
		t.Fatalf("unexpected snippet %q", deadLetters[0].PayloadSnippet)
	}
}

func TestIngest_NotifierFailureDoesNotFailIngestion(t *testing.T) {
	f := newIngestFixture(t)
	f.notifier.EXPECT().WebhookDeadLettered(mock.Anything, mock.Anything).Return(errors.New("sink down")).Once()

	_, err := f.svc.Ingest(context.Background(), shopifyDelivery("orders", `not json`, ""))
	if !errors.Is(err, apperr.ErrPayloadInvalid) {
		t.Fatalf("expected payload error, got %v", err)
	}
}

func TestIngest_UnknownRoutesRecordNothing(t *testing.T) {
	f := newIngestFixture(t)
	ctx := context.Background()

	_, err := f.svc.Ingest(ctx, Delivery{Family: signature.FamilyCommerce, Segment: "customers", Headers: http.Header{}, Body: []byte(`{}`)})
	if !errors.Is(err, apperr.ErrTopicUnsupported) {
		t.Fatalf("expected topic error, got %v", err)
	}
	_, err = f.svc.Ingest(ctx, Delivery{Family: signature.FamilyConversions, Segment: "hubspot", Headers: http.Header{}, Body: []byte(`{}`)})
	if !errors.Is(err, apperr.ErrProviderUnsupported) {
		t.Fatalf("expected provider error, got %v", err)
	}

	events, _ := f.svc.ListEvents(ctx, domain.WebhookEventFilter{})
	if len(events) != 0 {
		t.Fatalf("expected no recorded events, got %d", len(events))
	}
}

func TestResolveDelivery(t *testing.T) {
	t.Parallel()
	tests := []struct {
		family    signature.Family
		segment   string
		provider  string
		eventType string
	}{
		{signature.FamilyConversions, "meta", "meta", "conversion"},
		{signature.FamilyConversions, "Google", "google", "conversion"},
		{signature.FamilyCRM, "salesforce", "salesforce", "crm"},
		{signature.FamilyCommerce, "products", "shopify", "products"},
	}
	for _, tc := range tests {
		p, eventType, err := ResolveDelivery(tc.family, tc.segment)
		if err != nil {
			t.Fatalf("%s/%s: unexpected error %v", tc.family, tc.segment, err)
		}
		if p.Key != tc.provider || eventType != tc.eventType {
			t.Fatalf("%s/%s: got=%s/%s want=%s/%s", tc.family, tc.segment, p.Key, eventType, tc.provider, tc.eventType)
		}
	}
}

func TestListEvents_RejectsUnknownStatus(t *testing.T) {
	f := newIngestFixture(t)
	_, err := f.svc.ListEvents(context.Background(), domain.WebhookEventFilter{Status: "pending"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPayloadSnippetTruncatesOnRuneBoundary(t *testing.T) {
	t.Parallel()
	body := []byte(strings.Repeat("a", maxSnippetBytes-1) + "é" + "tail")
	got := payloadSnippet(body)
	if len(got) != maxSnippetBytes-1 {
		t.Fatalf("got=%d want=%d", len(got), maxSnippetBytes-1)
	}
	if short := payloadSnippet([]byte("abc")); short != "abc" {
		t.Fatalf("got=%q want=%q", short, "abc")
	}
}

func TestPayloadTypeFallsBackToEventType(t *testing.T) {
	t.Parallel()
	if got := payloadType([]any{1, 2}, "crm"); got != "crm" {
		t.Fatalf("got=%q want=crm", got)
	}
	if got := payloadType(map[string]any{"object": "contact"}, "crm"); got != "contact" {
		t.Fatalf("got=%q want=contact", got)
	}
	if got := payloadType(map[string]any{"type": "", "event": "lead"}, "crm"); got != "lead" {
		t.Fatalf("got=%q want=lead", got)
	}
}

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()
	cases := map[int]int{0: defaultListLimit, -3: defaultListLimit, 10: 10, 10_000: maxListLimit}
	for in, want := range cases {
		if got := normalizeLimit(in); got != want {
			t.Fatalf("normalizeLimit(%d) got=%d want=%d", in, got, want)
		}
	}
}
