package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/redfield/usiop/internal/audit"
)

// Metrics counts guard decisions and turn latency. Registered on a
// per-server registry so tests can spin up servers independently.
type Metrics struct {
	Decisions    *prometheus.CounterVec
	TurnDuration prometheus.Histogram
}

// NewMetrics registers the server's metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usiop_guard_decisions_total",
			Help: "Guard decisions by outcome and denial category",
		}, []string{"decision", "category"}),

		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "usiop_turn_duration_seconds",
			Help:    "Duration of a full conversation turn including generation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveTurn records the duration of one handled turn.
func (m *Metrics) ObserveTurn(d time.Duration) {
	if m != nil {
		m.TurnDuration.Observe(d.Seconds())
	}
}

// Record implements the pipeline's decision recorder: every guard decision
// increments a counter. Allowed decisions carry the "none" category.
func (m *Metrics) Record(e audit.Entry) error {
	if m != nil {
		cat := e.Category
		if cat == "" {
			cat = "none"
		}
		m.Decisions.WithLabelValues(e.Decision, cat).Inc()
	}
	return nil
}
