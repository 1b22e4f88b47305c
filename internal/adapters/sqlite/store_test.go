package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
	"github.com/fr0stylo/webhookd/internal/db"
)

func newTestDatabase(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "webhookd-test"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestWebhookStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewWebhookStore(newTestDatabase(t))
	base := time.Date(2026, 2, 19, 10, 0, 0, 123456789, time.UTC)

	events := []domain.WebhookEvent{
		{ID: "e1", Provider: "shopify", EventType: "orders/create", SourceID: "wh-1", ReceivedAt: base, PayloadHash: "abc", PayloadSize: 12, Status: domain.WebhookAccepted},
		{ID: "e2", Provider: "meta", EventType: "page", ReceivedAt: base.Add(time.Second), PayloadHash: "def", PayloadSize: 3, Status: domain.WebhookRejected, Reason: "invalid_signature"},
	}
	for _, e := range events {
		if err := store.AppendEvent(ctx, e); err != nil {
			t.Fatalf("append event %s: %v", e.ID, err)
		}
	}

	got, err := store.ListEvents(ctx, domain.WebhookEventFilter{})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(got) != 2 || got[0].ID != "e2" || got[1].ID != "e1" {
		t.Fatalf("unexpected events: %+v", got)
	}
	if got[1] != events[0] {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", got[1], events[0])
	}
	if got[0].SourceID != "" || got[0].Reason != "invalid_signature" {
		t.Fatalf("unexpected nullable fields: %+v", got[0])
	}

	rejected, err := store.ListEvents(ctx, domain.WebhookEventFilter{Status: domain.WebhookRejected, Limit: 1})
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(rejected) != 1 || rejected[0].ID != "e2" {
		t.Fatalf("unexpected rejected events: %+v", rejected)
	}

	letter := domain.WebhookDeadLetter{ID: "d1", Provider: "meta", EventType: "page", ReceivedAt: base, Reason: "invalid_json", PayloadSnippet: "{bad"}
	if err := store.AppendDeadLetter(ctx, letter); err != nil {
		t.Fatalf("append dead letter: %v", err)
	}
	letters, err := store.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{Provider: "meta"})
	if err != nil {
		t.Fatalf("list dead letters: %v", err)
	}
	if len(letters) != 1 || letters[0] != letter {
		t.Fatalf("unexpected dead letters: %+v", letters)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ = store.ListEvents(ctx, domain.WebhookEventFilter{})
	letters, _ = store.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(got) != 0 || len(letters) != 0 {
		t.Fatalf("expected empty store after reset: events=%d letters=%d", len(got), len(letters))
	}
}

func TestSyncStoreRoundTripAndSaveRun(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSyncStore(newTestDatabase(t))
	created := time.Date(2026, 2, 19, 9, 0, 0, 0, time.UTC)
	next := created.Add(time.Hour)

	job := domain.SyncJob{
		ID: "job-1", ProviderKey: "shopify", BrandID: "brand-1", Frequency: domain.FrequencyHourly,
		Status: domain.SyncJobActive, MaxRetries: 2, BaseBackoffMS: 1000,
		NextRunAt: &next, CreatedAt: created, UpdatedAt: created,
	}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if got.Cursor != nil || got.LastRunAt != nil || got.LastError != nil {
		t.Fatalf("expected nil optional fields: %+v", got)
	}
	if got.NextRunAt == nil || !got.NextRunAt.Equal(next) || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected times: %+v", got)
	}

	failedAt := created.Add(2 * time.Hour)
	reason := "provider rate limited"
	got.Status = domain.SyncJobPaused
	got.RetryCount = 3
	got.LastRunAt = &failedAt
	got.NextRunAt = nil
	got.LastError = &reason
	got.UpdatedAt = failedAt
	letter := domain.SyncDeadLetter{ID: "dl-1", JobID: "job-1", ProviderKey: "shopify", FailedAt: failedAt, Reason: reason, RetryCount: 3}
	if err := store.SaveRun(ctx, got, &letter); err != nil {
		t.Fatalf("save run: %v", err)
	}

	saved, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("get saved job: %v", err)
	}
	if saved.Status != domain.SyncJobPaused || saved.RetryCount != 3 || saved.NextRunAt != nil {
		t.Fatalf("unexpected saved job: %+v", saved)
	}
	if saved.LastError == nil || *saved.LastError != reason {
		t.Fatalf("unexpected last error: %v", saved.LastError)
	}

	letters, err := store.ListDeadLetters(ctx, domain.SyncDeadLetterFilter{JobID: "job-1"})
	if err != nil {
		t.Fatalf("list dead letters: %v", err)
	}
	if len(letters) != 1 || letters[0] != letter {
		t.Fatalf("unexpected dead letters: %+v", letters)
	}

	paused, err := store.ListJobs(ctx, domain.SyncJobFilter{Status: domain.SyncJobPaused})
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(paused) != 1 || paused[0].ID != "job-1" {
		t.Fatalf("unexpected paused jobs: %+v", paused)
	}
}

func TestSyncStoreMissingJob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSyncStore(newTestDatabase(t))

	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("get: got=%v want=%v", err, ports.ErrNotFound)
	}
	now := time.Now().UTC()
	err := store.SaveRun(ctx, domain.SyncJob{ID: "missing", Status: domain.SyncJobActive, UpdatedAt: now}, nil)
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("save: got=%v want=%v", err, ports.ErrNotFound)
	}
}
