// Package metrics defines the Prometheus collectors of the evaluation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Energy mix lookup outcomes.
const (
	LookupLive     = "live"
	LookupFallback = "fallback"
	LookupSkipped  = "skipped"
)

type Metrics struct {
	Evaluations      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	Duration         prometheus.Histogram
	FinalScore       prometheus.Histogram
	EnergyMixLookups *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twinscore",
			Name:      "evaluations_total",
			Help:      "Completed evaluations by classification.",
		}, []string{"classification"}),
		ValidationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twinscore",
			Name:      "validation_errors_total",
			Help:      "Rejected evaluation requests by reason.",
		}, []string{"reason"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "twinscore",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent validating and scoring a request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		FinalScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "twinscore",
			Name:      "final_score",
			Help:      "Distribution of final sustainability scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 9),
		}),
		EnergyMixLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "twinscore",
			Name:      "energymix_lookups_total",
			Help:      "Renewable share lookups by outcome.",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.Evaluations, m.ValidationErrors, m.Duration, m.FinalScore, m.EnergyMixLookups)
	}
	return m
}

func (m *Metrics) ObserveEvaluation(classification string, score float64, took time.Duration) {
	m.Evaluations.WithLabelValues(classification).Inc()
	m.FinalScore.Observe(score)
	m.Duration.Observe(took.Seconds())
}

func (m *Metrics) ObserveValidationError(reason string) {
	m.ValidationErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveLookup(outcome string) {
	m.EnergyMixLookups.WithLabelValues(outcome).Inc()
}
