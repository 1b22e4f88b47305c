package sqlite

import (
	"context"
	"fmt"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/db/queries"
)

// WebhookStore persists the ingestion log and webhook dead letters.
type WebhookStore struct {
	db webhookDatabase
}

// NewWebhookStore wraps database.
func NewWebhookStore(database webhookDatabase) *WebhookStore {
	return &WebhookStore{db: database}
}

func (s *WebhookStore) AppendEvent(ctx context.Context, event domain.WebhookEvent) error {
	return s.db.InsertWebhookEvent(ctx, queries.InsertWebhookEventParams{
		ID:          event.ID,
		Provider:    event.Provider,
		EventType:   event.EventType,
		SourceID:    nullIfEmpty(event.SourceID),
		ReceivedAt:  formatTime(event.ReceivedAt),
		PayloadHash: event.PayloadHash,
		PayloadSize: int64(event.PayloadSize),
		Status:      string(event.Status),
		Reason:      nullIfEmpty(event.Reason),
	})
}

func (s *WebhookStore) ListEvents(ctx context.Context, filter domain.WebhookEventFilter) ([]domain.WebhookEvent, error) {
	rows, err := s.db.ListWebhookEvents(ctx, queries.ListWebhookEventsParams{
		Provider: filter.Provider,
		Status:   string(filter.Status),
		Limit:    queryLimit(filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.WebhookEvent, 0, len(rows))
	for _, row := range rows {
		receivedAt, err := parseTime(row.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse received_at of event %s: %w", row.ID, err)
		}
		out = append(out, domain.WebhookEvent{
			ID:          row.ID,
			Provider:    row.Provider,
			EventType:   row.EventType,
			SourceID:    row.SourceID.String,
			ReceivedAt:  receivedAt,
			PayloadHash: row.PayloadHash,
			PayloadSize: int(row.PayloadSize),
			Status:      domain.WebhookStatus(row.Status),
			Reason:      row.Reason.String,
		})
	}
	return out, nil
}

func (s *WebhookStore) AppendDeadLetter(ctx context.Context, entry domain.WebhookDeadLetter) error {
	return s.db.InsertWebhookDeadLetter(ctx, queries.InsertWebhookDeadLetterParams{
		ID:             entry.ID,
		Provider:       entry.Provider,
		EventType:      entry.EventType,
		ReceivedAt:     formatTime(entry.ReceivedAt),
		Reason:         entry.Reason,
		PayloadSnippet: entry.PayloadSnippet,
	})
}

func (s *WebhookStore) ListDeadLetters(ctx context.Context, filter domain.WebhookDeadLetterFilter) ([]domain.WebhookDeadLetter, error) {
	rows, err := s.db.ListWebhookDeadLetters(ctx, queries.ListWebhookDeadLettersParams{
		Provider: filter.Provider,
		Reason:   filter.Reason,
		Limit:    queryLimit(filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	out := make([]domain.WebhookDeadLetter, 0, len(rows))
	for _, row := range rows {
		receivedAt, err := parseTime(row.ReceivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse received_at of dead letter %s: %w", row.ID, err)
		}
		out = append(out, domain.WebhookDeadLetter{
			ID:             row.ID,
			Provider:       row.Provider,
			EventType:      row.EventType,
			ReceivedAt:     receivedAt,
			Reason:         row.Reason,
			PayloadSnippet: row.PayloadSnippet,
		})
	}
	return out, nil
}

func (s *WebhookStore) Reset(ctx context.Context) error {
	return s.db.ResetWebhooks(ctx)
}
