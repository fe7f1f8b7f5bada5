package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "govuk_questions"

// PrometheusObserver counts events by type, level and journey.
type PrometheusObserver struct {
	events *prometheus.CounterVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers its
// collector with reg. If an identical collector is already registered it is
// reused.
func NewPrometheusObserver(reg prometheus.Registerer) (*PrometheusObserver, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journey_events_total",
			Help:      "Total number of journey events by type, level and journey",
		},
		[]string{"type", "level", "journey"},
	)

	if reg != nil {
		if err := reg.Register(events); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, fmt.Errorf("register journey metrics: %w", err)
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, fmt.Errorf("register journey metrics: %w", err)
			}
			events = existing
		}
	}

	return &PrometheusObserver{events: events}, nil
}

func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	o.events.WithLabelValues(string(event.Type), event.Level.String(), event.Journey()).Inc()
}

// Collector returns the underlying counter for registration or testing.
func (o *PrometheusObserver) Collector() *prometheus.CounterVec {
	return o.events
}
