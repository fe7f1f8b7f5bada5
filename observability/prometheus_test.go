package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/x-govuk/questions/observability"
)

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()

	obs, err := observability.NewPrometheusObserver(reg)
	if err != nil {
		t.Fatalf("NewPrometheusObserver() error: %v", err)
	}

	ctx := context.Background()
	advance := observability.Event{Type: "journey.advance", Level: observability.LevelInfo, Data: map[string]any{"journey": "add-person"}}
	obs.OnEvent(ctx, advance)
	obs.OnEvent(ctx, advance)
	obs.OnEvent(ctx, observability.Event{Type: "journey.step.invalid", Level: observability.LevelWarning})

	if got := testutil.ToFloat64(obs.Collector().WithLabelValues("journey.advance", "INFO", "add-person")); got != 2 {
		t.Errorf("advance count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(obs.Collector().WithLabelValues("journey.step.invalid", "WARN", "")); got != 1 {
		t.Errorf("invalid step count = %v, want 1", got)
	}

	again, err := observability.NewPrometheusObserver(reg)
	if err != nil {
		t.Fatalf("second NewPrometheusObserver() error: %v", err)
	}
	if again.Collector() != obs.Collector() {
		t.Error("second observer did not reuse the registered collector")
	}
}
