// Package metrics provides observability for the signup flow machine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the flow machine's Prometheus metrics. All observe helpers
// are nil-safe so tests can run without a registry.
type Metrics struct {
	// State transitions by source, target and triggering event.
	Transitions *prometheus.CounterVec

	// Fatal flow failures by reason.
	Failures *prometheus.CounterVec

	// Sessions activated on flow completion.
	SessionActivations prometheus.Counter

	// Actor call latencies by operation.
	ActorDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all flow metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_signup_transitions_total",
			Help: "Total flow machine transitions by source, target and event",
		}, []string{"from", "to", "event"}),

		Failures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_signup_failures_total",
			Help: "Total fatal flow failures by reason",
		}, []string{"reason"}),

		SessionActivations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_signup_session_activations_total",
			Help: "Total sessions activated by completed sign-up flows",
		}),

		ActorDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatehouse_signup_actor_duration_seconds",
			Help:    "Duration of identity-service actor calls by operation",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
	}
}

// IncTransition records one machine transition.
func (m *Metrics) IncTransition(from, to, event string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to, event).Inc()
	}
}

// IncFailure records one fatal flow failure.
func (m *Metrics) IncFailure(reason string) {
	if m != nil {
		m.Failures.WithLabelValues(reason).Inc()
	}
}

// IncSessionActivation records one session activation.
func (m *Metrics) IncSessionActivation() {
	if m != nil {
		m.SessionActivations.Inc()
	}
}

// ObserveActor records the duration of one identity-service call.
func (m *Metrics) ObserveActor(op string, d time.Duration) {
	if m != nil {
		m.ActorDuration.WithLabelValues(op).Observe(d.Seconds())
	}
}
