package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
)

func TestWebhookStoreListsMostRecentFirstWithFilters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewWebhookStore()

	for i, e := range []domain.WebhookEvent{
		{ID: "1", Provider: "meta", Status: domain.WebhookAccepted},
		{ID: "2", Provider: "shopify", Status: domain.WebhookRejected},
		{ID: "3", Provider: "meta", Status: domain.WebhookRejected},
	} {
		if err := store.AppendEvent(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	all, _ := store.ListEvents(ctx, domain.WebhookEventFilter{})
	if len(all) != 3 || all[0].ID != "3" || all[2].ID != "1" {
		t.Fatalf("unexpected order: %+v", all)
	}
	meta, _ := store.ListEvents(ctx, domain.WebhookEventFilter{Provider: "meta", Status: domain.WebhookRejected})
	if len(meta) != 1 || meta[0].ID != "3" {
		t.Fatalf("unexpected filtered result: %+v", meta)
	}
	limited, _ := store.ListEvents(ctx, domain.WebhookEventFilter{Limit: 2})
	if len(limited) != 2 {
		t.Fatalf("got=%d want=2", len(limited))
	}

	_ = store.AppendDeadLetter(ctx, domain.WebhookDeadLetter{ID: "d1", Provider: "meta", Reason: "WEBHOOK_PAYLOAD_INVALID"})
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ = store.ListEvents(ctx, domain.WebhookEventFilter{})
	dl, _ := store.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{})
	if len(all) != 0 || len(dl) != 0 {
		t.Fatalf("expected empty store after reset, events=%d deadLetters=%d", len(all), len(dl))
	}
}

func TestSyncStoreSaveRunIsolatesCallerPointers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewSyncStore()
	cursor := "meta:000000000010"
	job := domain.SyncJob{ID: "job-1", ProviderKey: "meta", Status: domain.SyncJobActive, Cursor: &cursor, CreatedAt: time.Now()}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}
	cursor = "mutated"

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if *got.Cursor != "meta:000000000010" {
		t.Fatalf("stored cursor changed through caller pointer: %q", *got.Cursor)
	}

	got.Status = domain.SyncJobPaused
	if err := store.SaveRun(ctx, got, &domain.SyncDeadLetter{ID: "dl-1", JobID: "job-1", ProviderKey: "meta"}); err != nil {
		t.Fatalf("save run: %v", err)
	}
	paused, _ := store.ListJobs(ctx, domain.SyncJobFilter{Status: domain.SyncJobPaused})
	if len(paused) != 1 {
		t.Fatalf("got=%d want=1 paused jobs", len(paused))
	}
	dls, _ := store.ListDeadLetters(ctx, domain.SyncDeadLetterFilter{JobID: "job-1"})
	if len(dls) != 1 {
		t.Fatalf("got=%d want=1 dead letters", len(dls))
	}

	if _, err := store.GetJob(ctx, "missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.SaveRun(ctx, domain.SyncJob{ID: "missing"}, nil); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on save, got %v", err)
	}
}
