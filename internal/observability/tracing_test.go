package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartDBSpanRecordsQueryAndError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	ctx := WithSyncIdentity(context.Background(), "job-7", "hubspot")
	_, span := StartDBSpan(ctx, "UpdateSyncJobRun", "exec")
	span.RecordError(nil)
	span.RecordError(errors.New("database is locked"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("got=%d want=1", len(ended))
	}
	got := ended[0]
	if got.Name() != "db.UpdateSyncJobRun" {
		t.Fatalf("got=%s want=db.UpdateSyncJobRun", got.Name())
	}
	if got.Status().Code != codes.Error {
		t.Fatalf("got=%v want=%v", got.Status().Code, codes.Error)
	}
	attrs := make(map[attribute.Key]string)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["webhookd.sync.job_id"] != "job-7" || attrs["webhookd.provider"] != "hubspot" {
		t.Fatalf("unexpected attributes: %v", attrs)
	}
	if attrs["db.operation"] != "exec" {
		t.Fatalf("got=%s want=exec", attrs["db.operation"])
	}
}
