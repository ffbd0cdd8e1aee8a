package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricegate_cache_hits_total",
				Help: "Response cache hits by timeframe",
			},
			[]string{"tf"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricegate_cache_misses_total",
				Help: "Response cache misses by timeframe",
			},
			[]string{"tf"},
		),
		resolutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricegate_resolutions_total",
				Help: "Resolved history requests by serving path and timeframe",
			},
			[]string{"path", "tf"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricegate_errors_total",
				Help: "Recoverable and terminal errors by kind",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pricegate_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCacheHit records a response cache hit.
func (r *Recorder) RecordCacheHit(tf string) {
	r.cacheHits.WithLabelValues(tf).Inc()
}

// RecordCacheMiss records a response cache miss.
func (r *Recorder) RecordCacheMiss(tf string) {
	r.cacheMisses.WithLabelValues(tf).Inc()
}

// RecordResolution records which tier served a request.
func (r *Recorder) RecordResolution(path, tf string) {
	r.resolutions.WithLabelValues(path, tf).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
