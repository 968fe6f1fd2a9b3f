// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation pipeline
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_recommendation_requests_total",
			Help: "Recommendation requests by terminal outcome",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmrec_pipeline_stage_duration_seconds",
			Help:    "Duration of each recommendation pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmrec_recommendation_candidates",
			Help:    "Number of candidate films sent to the review service per request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// Review service
	ReviewRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_review_requests_total",
			Help: "Review service calls by result",
		},
		[]string{"result"}, // "success", "upstream_error", "transport_error", "timeout", "decode_error", "rejected"
	)

	ReviewRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filmrec_review_request_duration_seconds",
			Help:    "Duration of review service calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "filmrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// HTTP surface
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filmrec_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filmrec_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
