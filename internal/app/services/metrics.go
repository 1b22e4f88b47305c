package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/fr0stylo/webhookd/internal/app/services"

type ingestionMetrics struct {
	requests     metric.Int64Counter
	accepted     metric.Int64Counter
	rejected     metric.Int64Counter
	deadLettered metric.Int64Counter
}

func newIngestionMetrics() ingestionMetrics {
	meter := otel.Meter(meterName)
	requests, _ := meter.Int64Counter("webhookd.ingestion.requests")
	accepted, _ := meter.Int64Counter("webhookd.ingestion.accepted")
	rejected, _ := meter.Int64Counter("webhookd.ingestion.rejected")
	deadLettered, _ := meter.Int64Counter("webhookd.ingestion.dead_lettered")
	return ingestionMetrics{
		requests:     requests,
		accepted:     accepted,
		rejected:     rejected,
		deadLettered: deadLettered,
	}
}

func (m ingestionMetrics) recordRequest(ctx context.Context, provider string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m ingestionMetrics) recordAccepted(ctx context.Context, provider string) {
	m.accepted.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

func (m ingestionMetrics) recordRejected(ctx context.Context, provider, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("reason", reason),
	))
}

func (m ingestionMetrics) recordDeadLetter(ctx context.Context, provider, reason string) {
	m.deadLettered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("reason", reason),
	))
}

type syncMetrics struct {
	runs         metric.Int64Counter
	deadLettered metric.Int64Counter
	duration     metric.Float64Histogram
}

func newSyncMetrics() syncMetrics {
	meter := otel.Meter(meterName)
	runs, _ := meter.Int64Counter("webhookd.sync.runs")
	deadLettered, _ := meter.Int64Counter("webhookd.sync.dead_lettered")
	duration, _ := meter.Float64Histogram("webhookd.sync.run.duration", metric.WithUnit("ms"))
	return syncMetrics{runs: runs, deadLettered: deadLettered, duration: duration}
}

func (m syncMetrics) recordRun(ctx context.Context, providerKey, status string, durationMS int64) {
	attrs := metric.WithAttributes(
		attribute.String("provider", providerKey),
		attribute.String("status", status),
	)
	m.runs.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(durationMS), attrs)
}

func (m syncMetrics) recordDeadLetter(ctx context.Context, providerKey string) {
	m.deadLettered.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", providerKey)))
}
