// Package metrics exposes Prometheus metrics for the pipeline and the
// HTTP service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexpoi_pipeline_runs_total",
			Help: "Pipeline runs by outcome.",
		},
		[]string{"status"},
	)

	pipelineStageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hexpoi_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"stage"},
	)

	hexagonsCovered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hexpoi_hexagons_covered",
			Help:    "Hexagon count per tessellated boundary.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		},
	)

	lookupCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexpoi_lookup_cache_results_total",
			Help: "OSM lookup cache results by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	upstreamLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hexpoi_upstream_latency_seconds",
			Help:    "Latency of OSM upstream calls in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"upstream"},
	)

	invalidationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexpoi_invalidation_events_total",
			Help: "Cache invalidation events by result.",
		},
		[]string{"result"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hexpoi_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
)

func ObservePipelineRun(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	pipelineRunsTotal.WithLabelValues(status).Inc()
}

func ObserveStage(stage string, seconds float64) {
	pipelineStageDurationSeconds.WithLabelValues(stage).Observe(seconds)
}

func ObserveHexagons(n int) {
	hexagonsCovered.Observe(float64(n))
}

func IncLookupCache(kind, outcome string) {
	lookupCacheResults.WithLabelValues(kind, outcome).Inc()
}

func ObserveUpstreamLatency(upstream string, seconds float64) {
	upstreamLatencySeconds.WithLabelValues(upstream).Observe(seconds)
}

func IncInvalidation(result string) {
	invalidationEventsTotal.WithLabelValues(result).Inc()
}

func ObserveHTTP(method, route string, status int) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// Handler serves the default registry, which promauto registers into.
func Handler() http.Handler {
	return promhttp.Handler()
}
