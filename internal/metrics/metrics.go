// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Parser metrics
	ParseStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflix_parse_stage_total",
			Help: "Structured-query parses by the generator stage that produced them",
		},
		[]string{"stage"}, // "strict", "loose", "fallback"
	)

	ParseErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodflix_parse_errors_total",
			Help: "Generator outputs that could not be recovered as JSON",
		},
	)

	ParseAmbiguous = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moodflix_parse_ambiguous_total",
			Help: "Parses flagged as ambiguous",
		},
	)

	// Catalog metrics
	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodflix_catalog_request_duration_seconds",
			Help:    "Latency of movie catalog requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)

	CatalogCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflix_catalog_cache_total",
			Help: "Catalog response cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moodflix_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Recommendation metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moodflix_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "ambiguous", "parse_error"
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moodflix_recommendation_results",
			Help:    "Number of ranked movies returned per request",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 40, 60},
		},
	)

	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moodflix_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ObserveCatalogRequest records one catalog call.
func ObserveCatalogRequest(endpoint string, status int, d time.Duration) {
	CatalogRequestDuration.WithLabelValues(endpoint, statusLabel(status)).Observe(d.Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, statusLabel(status)).Observe(d.Seconds())
}

// statusLabel keeps label cardinality low; 0 means the request never got a response.
func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
