package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	generationsStored *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec
	sourceItems       *prometheus.GaugeVec
	latency           *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		generationsStored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscribe_generations_stored_total",
				Help: "Total number of generations written to a backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockscribe_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		sourceItems: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockscribe_source_items",
				Help: "Items returned by a news source on its last fetch",
			},
			[]string{"source"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockscribe_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordGenerationStored records a generation written to a backend.
func (r *Recorder) RecordGenerationStored(backend, symbol string) {
	r.generationsStored.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSourceItems records how many items a source contributed.
func (r *Recorder) RecordSourceItems(source string, count int) {
	r.sourceItems.WithLabelValues(source).Set(float64(count))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
