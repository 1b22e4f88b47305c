package main

import (
	"context"
	"fmt"
	"log"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/ports"
)

const (
	kindAll     = "all"
	kindWebhook = "webhook"
	kindSync    = "sync"
)

type deadLetterPublisher interface {
	ports.DeadLetterNotifier
}

type webhookDeadLetterLister interface {
	ListDeadLetters(ctx context.Context, filter domain.WebhookDeadLetterFilter) ([]domain.WebhookDeadLetter, error)
}

type syncDeadLetterLister interface {
	ListDeadLetters(ctx context.Context, filter domain.SyncDeadLetterFilter) ([]domain.SyncDeadLetter, error)
}

type redriveOptions struct {
	Kind     string
	Provider string
	Limit    int
	DryRun   bool
}

type redriveSummary struct {
	Webhook int
	Sync    int
	Failed  int
}

func (o redriveOptions) validate() error {
	switch o.Kind {
	case kindAll, kindWebhook, kindSync:
	default:
		return fmt.Errorf("invalid kind %q: want webhook, sync or all", o.Kind)
	}
	if o.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return nil
}

func redrive(ctx context.Context, webhooks webhookDeadLetterLister, syncs syncDeadLetterLister, publisher deadLetterPublisher, opts redriveOptions) (redriveSummary, error) {
	var summary redriveSummary

	if opts.Kind == kindAll || opts.Kind == kindWebhook {
		entries, err := webhooks.ListDeadLetters(ctx, domain.WebhookDeadLetterFilter{Provider: opts.Provider, Limit: opts.Limit})
		if err != nil {
			return summary, fmt.Errorf("list webhook dead letters: %w", err)
		}
		for _, entry := range entries {
			if err := publisher.WebhookDeadLettered(ctx, entry); err != nil {
				log.Printf("skip webhook dead letter id=%s: %v", entry.ID, err)
				summary.Failed++
				continue
			}
			summary.Webhook++
		}
	}

	if opts.Kind == kindAll || opts.Kind == kindSync {
		entries, err := syncs.ListDeadLetters(ctx, domain.SyncDeadLetterFilter{ProviderKey: opts.Provider, Limit: opts.Limit})
		if err != nil {
			return summary, fmt.Errorf("list sync dead letters: %w", err)
		}
		for _, entry := range entries {
			if err := publisher.SyncDeadLettered(ctx, entry); err != nil {
				log.Printf("skip sync dead letter id=%s: %v", entry.ID, err)
				summary.Failed++
				continue
			}
			summary.Sync++
		}
	}

	return summary, nil
}

type dryRunPublisher struct{}

func (dryRunPublisher) WebhookDeadLettered(_ context.Context, entry domain.WebhookDeadLetter) error {
	fmt.Printf("webhook %s provider=%s reason=%s received_at=%s\n", entry.ID, entry.Provider, entry.Reason, entry.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

func (dryRunPublisher) SyncDeadLettered(_ context.Context, entry domain.SyncDeadLetter) error {
	fmt.Printf("sync %s job=%s provider=%s reason=%q retries=%d\n", entry.ID, entry.JobID, entry.ProviderKey, entry.Reason, entry.RetryCount)
	return nil
}
