package db

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fr0stylo/webhookd/internal/db/queries"
	"github.com/fr0stylo/webhookd/internal/observability"
)

const (
	latencyWindow = 512
	meterName     = "github.com/fr0stylo/webhookd/internal/db"
)

// LatencyStats summarizes the most recent samples for one sqlc query.
type LatencyStats struct {
	Name   string
	Count  int
	Errors int
	P50    time.Duration
	P95    time.Duration
	Max    time.Duration
}

// latencyRing holds the last latencyWindow samples of one query.
type latencyRing struct {
	samples [latencyWindow]time.Duration
	next    int
	filled  bool
	errors  int
}

func (r *latencyRing) add(d time.Duration, failed bool) {
	r.samples[r.next] = d
	r.next = (r.next + 1) % latencyWindow
	if r.next == 0 {
		r.filled = true
	}
	if failed {
		r.errors++
	}
}

func (r *latencyRing) values() []time.Duration {
	if r.filled {
		return slices.Clone(r.samples[:])
	}
	return slices.Clone(r.samples[:r.next])
}

type queryLatencyTracker struct {
	mu        sync.Mutex
	rings     map[string]*latencyRing
	histogram metric.Float64Histogram
}

func newQueryLatencyTracker() *queryLatencyTracker {
	histogram, _ := otel.Meter(meterName).Float64Histogram(
		"webhookd.db.query.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Duration of sqlc queries against the webhookd store"),
	)
	return &queryLatencyTracker{rings: make(map[string]*latencyRing), histogram: histogram}
}

func (t *queryLatencyTracker) observe(ctx context.Context, name, operation string, d time.Duration, err error) {
	t.mu.Lock()
	ring, ok := t.rings[name]
	if !ok {
		ring = &latencyRing{}
		t.rings[name] = ring
	}
	ring.add(d, err != nil)
	t.mu.Unlock()

	if t.histogram != nil {
		t.histogram.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributes(
			attribute.String("db.query_name", name),
			attribute.String("db.operation", operation),
			attribute.Bool("error", err != nil),
		))
	}
}

func (t *queryLatencyTracker) snapshot() []LatencyStats {
	t.mu.Lock()
	stats := make([]LatencyStats, 0, len(t.rings))
	for name, ring := range t.rings {
		values := ring.values()
		if len(values) == 0 {
			continue
		}
		slices.Sort(values)
		stats = append(stats, LatencyStats{
			Name:   name,
			Count:  len(values),
			Errors: ring.errors,
			P50:    percentile(values, 50),
			P95:    percentile(values, 95),
			Max:    values[len(values)-1],
		})
	}
	t.mu.Unlock()

	slices.SortFunc(stats, func(a, b LatencyStats) int {
		if c := cmp.Compare(b.P95, a.P95); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return stats
}

// percentile uses the nearest-rank method over sorted values.
func percentile(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// instrumentedDBTX traces and times every sqlc query issued through it.
type instrumentedDBTX struct {
	inner   queries.DBTX
	tracker *queryLatencyTracker
}

func newInstrumentedDBTX(inner queries.DBTX, tracker *queryLatencyTracker) queries.DBTX {
	if tracker == nil {
		return inner
	}
	return &instrumentedDBTX{inner: inner, tracker: tracker}
}

func (d *instrumentedDBTX) track(ctx context.Context, query, operation string) (context.Context, func(error)) {
	name := queryName(query)
	ctx, span := observability.StartDBSpan(ctx, name, operation)
	start := time.Now()
	return ctx, func(err error) {
		d.tracker.observe(ctx, name, operation, time.Since(start), err)
		span.RecordError(err)
		span.End()
	}
}

func (d *instrumentedDBTX) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, done := d.track(ctx, query, "exec")
	result, err := d.inner.ExecContext(ctx, query, args...)
	done(err)
	return result, err
}

func (d *instrumentedDBTX) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	ctx, done := d.track(ctx, query, "prepare")
	stmt, err := d.inner.PrepareContext(ctx, query)
	done(err)
	return stmt, err
}

func (d *instrumentedDBTX) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, done := d.track(ctx, query, "query")
	rows, err := d.inner.QueryContext(ctx, query, args...)
	done(err)
	return rows, err
}

// QueryRowContext defers errors to Scan, so samples never count as failed here.
func (d *instrumentedDBTX) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, done := d.track(ctx, query, "query_row")
	row := d.inner.QueryRowContext(ctx, query, args...)
	done(nil)
	return row
}

// queryName extracts NAME from the leading "-- name: NAME :kind" comment sqlc emits.
func queryName(query string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(query), "\n")
	rest, ok := strings.CutPrefix(strings.TrimSpace(first), "-- name:")
	if !ok {
		return "unknown"
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}
