package db

import (
	"context"
	"log/slog"
	"time"
)

// QueryLatencyStats returns current per-query latency distribution samples, slowest p95 first.
func (c *Database) QueryLatencyStats() []LatencyStats {
	if c == nil || c.tracker == nil {
		return nil
	}
	return c.tracker.snapshot()
}

// LogLatencyStats logs the slowest queries every interval until ctx is done.
func (c *Database) LogLatencyStats(ctx context.Context, log *slog.Logger, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := c.QueryLatencyStats()
		limit := min(5, len(stats))
		for _, entry := range stats[:limit] {
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"errors", entry.Errors,
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
