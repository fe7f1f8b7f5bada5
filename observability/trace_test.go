package observability_test

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/x-govuk/questions/observability"
)

func TestTraceObserver(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")

	obs := observability.TraceObserver{}
	obs.OnEvent(ctx, observability.NewEvent("journey.advance", observability.LevelInfo, "coordinator", map[string]any{
		"journey": "add-person",
		"steps":   3,
	}))
	obs.OnEvent(context.Background(), observability.NewEvent("journey.dropped", observability.LevelInfo, "coordinator", nil))

	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("exported %d spans, want 1", len(spans))
	}

	events := spans[0].Events
	if len(events) != 1 {
		t.Fatalf("span has %d events, want 1", len(events))
	}
	if events[0].Name != "journey.advance" {
		t.Errorf("event name = %q", events[0].Name)
	}

	attrs := map[string]string{}
	for _, kv := range events[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	want := map[string]string{"source": "coordinator", "severity": "INFO", "journey": "add-person", "steps": "3"}
	for k, v := range want {
		if attrs[k] != v {
			t.Errorf("attribute %s = %q, want %q", k, attrs[k], v)
		}
	}
}
