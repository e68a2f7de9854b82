// Package metrics exposes Prometheus instruments for the review pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sevigo/code-reviewer/internal/core"
)

// Metrics groups the pipeline counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Attempts *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Outcomes *prometheus.CounterVec
	Rejected *prometheus.CounterVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "code_reviewer_provider_attempts_total",
				Help: "Provider calls made, by model",
			},
			[]string{"model"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "code_reviewer_provider_failures_total",
				Help: "Failed provider calls, by model and failure kind",
			},
			[]string{"model", "kind"},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "code_reviewer_provider_latency_seconds",
				Help:    "Provider call latency",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
			},
			[]string{"model"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "code_reviewer_review_outcomes_total",
				Help: "Review requests by outcome",
			},
			[]string{"outcome"},
		),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "code_reviewer_requests_rejected_total",
				Help: "Requests rejected before reaching a provider, by reason",
			},
			[]string{"reason"},
		),
	}

	reg.MustRegister(m.Attempts, m.Failures, m.Latency, m.Outcomes, m.Rejected)
	return m
}

// ObserveAttempt records one provider call. kind is empty on success.
func (m *Metrics) ObserveAttempt(model core.ModelID, d time.Duration, kind core.FailureKind) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(string(model)).Inc()
	m.Latency.WithLabelValues(string(model)).Observe(d.Seconds())
	if kind != "" {
		m.Failures.WithLabelValues(string(model), string(kind)).Inc()
	}
}

// ObserveOutcome records how a review request ended.
func (m *Metrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
}

// ObserveRejected records a request refused at the boundary.
func (m *Metrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}
