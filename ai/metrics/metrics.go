// Package metrics exports Prometheus metrics for the tagging pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter registers and records tagging metrics.
type Exporter struct {
	registry *prometheus.Registry

	providerRequests *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	extractions      *prometheus.CounterVec
	notes            *prometheus.CounterVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one).
	Registry *prometheus.Registry
	// Buckets for latency histograms (in seconds).
	LatencyBuckets []float64
}

// DefaultConfig returns default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	}
}

// NewExporter creates a new Prometheus metrics exporter.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{registry: registry}

	e.providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagwise",
			Subsystem: "provider",
			Name:      "requests_total",
			Help:      "Total number of provider requests",
		},
		[]string{"provider", "status"},
	)

	e.providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tagwise",
			Subsystem: "provider",
			Name:      "latency_seconds",
			Help:      "Provider request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"provider"},
	)

	e.extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagwise",
			Subsystem: "extract",
			Name:      "strategies_total",
			Help:      "Tag extractions by winning strategy",
		},
		[]string{"strategy"},
	)

	e.notes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tagwise",
			Subsystem: "tagging",
			Name:      "notes_total",
			Help:      "Notes processed by outcome",
		},
		[]string{"status"},
	)

	registry.MustRegister(
		e.providerRequests,
		e.providerLatency,
		e.extractions,
		e.notes,
	)

	return e
}

// RecordRequest records one provider request.
func (e *Exporter) RecordRequest(provider string, latency time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	e.providerRequests.WithLabelValues(provider, status).Inc()
	e.providerLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordExtraction records which extraction strategy won.
func (e *Exporter) RecordExtraction(strategy string) {
	e.extractions.WithLabelValues(strategy).Inc()
}

// RecordNote records one processed note.
func (e *Exporter) RecordNote(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	e.notes.WithLabelValues(status).Inc()
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}
