package replay

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory. It suits single-instance deployments only.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]time.Time)}
}

// Reserve implements Store. Expired entries are purged on every call.
func (s *MemoryStore) Reserve(_ context.Context, key string, expiresAt, now time.Time) (bool, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeLocked(now)
	if existing, ok := s.entries[key]; ok {
		return false, existing, nil
	}
	s.entries[key] = expiresAt
	return true, time.Time{}, nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) purgeLocked(now time.Time) {
	for key, expiresAt := range s.entries {
		if !expiresAt.After(now) {
			delete(s.entries, key)
		}
	}
}
