// Package replay rejects webhook deliveries whose idempotency key was seen
// within a fixed window from its first sighting.
package replay

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultWindow is used when callers pass a non-positive window.
const DefaultWindow = 5 * time.Minute

// Store reserves keys until an expiry. Reserve must be atomic per key.
type Store interface {
	// Reserve stores key until expiresAt when no unexpired entry exists and
	// reports created=true. Otherwise it returns the existing expiry.
	Reserve(ctx context.Context, key string, expiresAt, now time.Time) (created bool, existing time.Time, err error)
}

// Registration is the outcome of registering one key.
type Registration struct {
	Duplicate bool      `json:"duplicate"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Guard registers replay keys against a Store.
type Guard struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// Option customises a Guard.
type Option func(*Guard)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGuard builds a guard with defaultWindow applied to calls without a window.
func NewGuard(store Store, defaultWindow time.Duration, opts ...Option) *Guard {
	if defaultWindow <= 0 {
		defaultWindow = DefaultWindow
	}
	g := &Guard{store: store, window: defaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register records key for window. A repeat inside the window is a duplicate
// and does not move the expiry.
func (g *Guard) Register(ctx context.Context, key string, window time.Duration) (Registration, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Registration{}, fmt.Errorf("replay key is required")
	}
	if window <= 0 {
		window = g.window
	}
	now := g.now().UTC()
	expiresAt := now.Add(window)

	created, existing, err := g.store.Reserve(ctx, key, expiresAt, now)
	if err != nil {
		return Registration{}, fmt.Errorf("reserve replay key: %w", err)
	}
	if !created {
		return Registration{Duplicate: true, ExpiresAt: existing}, nil
	}
	return Registration{ExpiresAt: expiresAt}, nil
}

// Key builds the canonical replay key for a delivery.
func Key(provider, eventType, sourceID string) string {
	parts := []string{strings.TrimSpace(provider), strings.TrimSpace(eventType)}
	if sourceID = strings.TrimSpace(sourceID); sourceID != "" {
		parts = append(parts, sourceID)
	}
	return strings.Join(parts, ":")
}
