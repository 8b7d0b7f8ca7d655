package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	SearchesTotal        *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
	PipelineStepDuration *prometheus.HistogramVec
	CacheLookupsTotal    *prometheus.CounterVec
	ExtractionSkipped    *prometheus.CounterVec
	SessionsActive       prometheus.Gauge
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "searches_total",
				Help: "Total number of image searches.",
			},
			[]string{"outcome"}, // found, not_found, cached, invalid, failed
		),
		SearchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_duration_seconds",
				Help:    "Duration of uncached image searches.",
				Buckets: []float64{5, 10, 15, 30, 45, 60, 90, 120},
			},
		),
		PipelineStepDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_step_duration_seconds",
				Help:    "Duration of individual navigation pipeline steps.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 20},
			},
			[]string{"step"},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_lookups_total",
				Help: "Result cache lookups.",
			},
			[]string{"result"}, // hit, miss, error
		),
		ExtractionSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extraction_skipped_total",
				Help: "Candidate links skipped during title extraction.",
			},
			[]string{"reason"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "browser_sessions_active",
				Help: "Browser sessions currently open.",
			},
		),
	}
}
