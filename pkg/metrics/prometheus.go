// Package metrics records engine-level Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder tracks valuation activity. A nil Recorder discards
// everything, so callers never need to guard.
type Recorder struct {
	valuationsTotal   *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	valuationDuration *prometheus.HistogramVec
	finalValue        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder. Call once per process;
// promauto registers collectors globally.
func New() *Recorder {
	return &Recorder{
		valuationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuation_runs_total",
				Help: "Total number of valuation runs",
			},
			[]string{"operation", "method"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "valuation_errors_total",
				Help: "Total number of valuation errors",
			},
			[]string{"operation", "type"},
		),
		valuationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuation_duration_seconds",
				Help:    "Duration of valuation operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		finalValue: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "valuation_final_value",
				Help:    "Distribution of recommended valuations",
				Buckets: prometheus.ExponentialBuckets(1e3, 10, 8),
			},
			[]string{"operation"},
		),
	}
}

// RecordValuation records a completed valuation run.
func (r *Recorder) RecordValuation(operation, method string) {
	if r == nil {
		return
	}
	r.valuationsTotal.WithLabelValues(operation, method).Inc()
}

// RecordError records a valuation error.
func (r *Recorder) RecordError(operation, kind string) {
	if r == nil {
		return
	}
	r.errorsTotal.WithLabelValues(operation, kind).Inc()
}

// RecordDuration records operation latency in seconds.
func (r *Recorder) RecordDuration(operation string, seconds float64) {
	if r == nil {
		return
	}
	r.valuationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordFinalValue records the recommended value of a finished run.
func (r *Recorder) RecordFinalValue(operation string, value float64) {
	if r == nil {
		return
	}
	if value > 0 {
		r.finalValue.WithLabelValues(operation).Observe(value)
	}
}
