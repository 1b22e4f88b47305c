package ports

import (
	"context"
	"errors"

	"github.com/fr0stylo/webhookd/internal/app/domain"
)

// ErrNotFound is returned by stores when a keyed record does not exist.
var ErrNotFound = errors.New("not found")

// WebhookStore holds the ingestion log and the webhook dead-letter ledger.
// Listings are most-recent-first.
type WebhookStore interface {
	AppendEvent(ctx context.Context, event domain.WebhookEvent) error
	ListEvents(ctx context.Context, filter domain.WebhookEventFilter) ([]domain.WebhookEvent, error)
	AppendDeadLetter(ctx context.Context, entry domain.WebhookDeadLetter) error
	ListDeadLetters(ctx context.Context, filter domain.WebhookDeadLetterFilter) ([]domain.WebhookDeadLetter, error)
	Reset(ctx context.Context) error
}

// DeadLetterNotifier publishes dead letters to an external sink.
type DeadLetterNotifier interface {
	WebhookDeadLettered(ctx context.Context, entry domain.WebhookDeadLetter) error
	SyncDeadLettered(ctx context.Context, entry domain.SyncDeadLetter) error
}
