// Package memory provides process-local store implementations.
package memory

import (
	"context"
	"sync"

	"github.com/fr0stylo/webhookd/internal/app/domain"
)

// WebhookStore keeps the ingestion log and dead letters in memory.
type WebhookStore struct {
	mu          sync.RWMutex
	events      []domain.WebhookEvent
	deadLetters []domain.WebhookDeadLetter
}

// NewWebhookStore returns an empty store.
func NewWebhookStore() *WebhookStore {
	return &WebhookStore{}
}

func (s *WebhookStore) AppendEvent(_ context.Context, event domain.WebhookEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *WebhookStore) ListEvents(_ context.Context, filter domain.WebhookEventFilter) ([]domain.WebhookEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WebhookEvent, 0)
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if filter.Provider != "" && event.Provider != filter.Provider {
			continue
		}
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		out = append(out, event)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *WebhookStore) AppendDeadLetter(_ context.Context, entry domain.WebhookDeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadLetters = append(s.deadLetters, entry)
	return nil
}

func (s *WebhookStore) ListDeadLetters(_ context.Context, filter domain.WebhookDeadLetterFilter) ([]domain.WebhookDeadLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WebhookDeadLetter, 0)
	for i := len(s.deadLetters) - 1; i >= 0; i-- {
		entry := s.deadLetters[i]
		if filter.Provider != "" && entry.Provider != filter.Provider {
			continue
		}
		if filter.Reason != "" && entry.Reason != filter.Reason {
			continue
		}
		out = append(out, entry)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// Reset clears events and dead letters.
func (s *WebhookStore) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.deadLetters = nil
	return nil
}
