package observability

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const dbTracerName = "github.com/fr0stylo/webhookd/internal/db"

// scope is the webhookd identity carried through a request or sync run.
// Each With* helper copies it, so parents never observe child values.
type scope struct {
	requestID string
	route     string
	provider  string
	eventType string
	jobID     string
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// field is one scope value with its span attribute and log key.
type field struct {
	attr  string
	log   string
	value string
}

func (s scope) fields() []field {
	return []field{
		{attr: "request.id", log: "request_id", value: s.requestID},
		{attr: "http.route", log: "route", value: s.route},
		{attr: "webhookd.provider", log: "provider", value: s.provider},
		{attr: "webhookd.event_type", log: "event_type", value: s.eventType},
		{attr: "webhookd.sync.job_id", log: "sync_job_id", value: s.jobID},
	}
}

// update applies fn to a copy of the current scope, stores it and tags the active span
// with whichever values fn changed.
func update(ctx context.Context, fn func(*scope)) context.Context {
	before := scopeFrom(ctx)
	after := before
	fn(&after)
	if after == before {
		return ctx
	}

	var attrs []attribute.KeyValue
	old := before.fields()
	for i, f := range after.fields() {
		if f.value != "" && f.value != old[i].value {
			attrs = append(attrs, attribute.String(f.attr, f.value))
		}
	}
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
	return context.WithValue(ctx, scopeKey{}, after)
}

func setIfPresent(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

// WithWebhookIdentity records the resolved provider and event type of an inbound webhook.
func WithWebhookIdentity(ctx context.Context, provider, eventType string) context.Context {
	return update(ctx, func(s *scope) {
		setIfPresent(&s.provider, provider)
		setIfPresent(&s.eventType, eventType)
	})
}

// WithSyncIdentity records the sync job being run and its provider.
func WithSyncIdentity(ctx context.Context, jobID, provider string) context.Context {
	return update(ctx, func(s *scope) {
		setIfPresent(&s.jobID, jobID)
		setIfPresent(&s.provider, provider)
	})
}

// WithRequestMetadata records the request id and matched route.
func WithRequestMetadata(ctx context.Context, requestID, route string) context.Context {
	return update(ctx, func(s *scope) {
		setIfPresent(&s.requestID, requestID)
		setIfPresent(&s.route, route)
	})
}

func present(value string) (string, bool) { return value, value != "" }

func ProviderFromContext(ctx context.Context) (string, bool) {
	return present(scopeFrom(ctx).provider)
}

func EventTypeFromContext(ctx context.Context) (string, bool) {
	return present(scopeFrom(ctx).eventType)
}

func JobIDFromContext(ctx context.Context) (string, bool) {
	return present(scopeFrom(ctx).jobID)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	return present(scopeFrom(ctx).requestID)
}

func RouteFromContext(ctx context.Context) (string, bool) {
	return present(scopeFrom(ctx).route)
}

// Span is the part of a trace span the store layer needs.
type Span interface {
	End()
	RecordError(error)
}

type dbSpan struct {
	trace.Span
}

func (s dbSpan) End() {
	s.Span.End()
}

func (s dbSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.Span.RecordError(err)
	s.Span.SetStatus(codes.Error, err.Error())
}

// StartDBSpan opens a client span for one sqlc query, tagged with the provider
// and sync job already on ctx.
func StartDBSpan(ctx context.Context, queryName, operation string) (context.Context, Span) {
	queryName = strings.TrimSpace(queryName)
	if queryName == "" {
		queryName = "unknown"
	}
	attrs := []attribute.KeyValue{
		attribute.String("db.system.name", "sqlite"),
		attribute.String("db.query_name", queryName),
		attribute.String("db.operation", strings.TrimSpace(operation)),
	}
	s := scopeFrom(ctx)
	if s.provider != "" {
		attrs = append(attrs, attribute.String("webhookd.provider", s.provider))
	}
	if s.jobID != "" {
		attrs = append(attrs, attribute.String("webhookd.sync.job_id", s.jobID))
	}

	ctx, span := otel.Tracer(dbTracerName).Start(ctx, "db."+queryName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, dbSpan{Span: span}
}
