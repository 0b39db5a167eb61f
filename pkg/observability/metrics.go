package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by render hooks.
type Metrics struct {
	Renders  *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates the render collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitrine_renders_total",
				Help: "Total number of entity renders",
			},
			[]string{"entity", "outcome"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vitrine_render_duration_seconds",
				Help:    "Duration of entity renders",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"entity"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Renders, m.Duration)
	}
	return m
}

// Hooks returns hooks recording every render.
func (m *Metrics) Hooks() Hooks {
	return Hooks{
		OnRender: func(_ context.Context, e *RenderEvent) {
			m.Renders.WithLabelValues(e.Entity, e.Outcome()).Inc()
			m.Duration.WithLabelValues(e.Entity).Observe(e.Duration.Seconds())
		},
	}
}
