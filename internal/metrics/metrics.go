// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

// Package metrics holds the Prometheus instruments for Darkwatch.
//
// All collectors are registered with the default registry through
// promauto and exposed on /metrics. Coverage:
//   - API endpoint latency and throughput
//   - Upstream (Global Fishing Watch) calls, retries and token refreshes
//   - Response cache efficiency
//   - Dark vessel aggregation fan-out and partial failures
//   - Circuit breaker state
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Upstream API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gfw_upstream_requests_total",
			Help: "Total number of Global Fishing Watch API requests by operation and status",
		},
		[]string{"operation", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gfw_upstream_request_duration_seconds",
			Help:    "Global Fishing Watch API request duration in seconds, retries included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	UpstreamRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gfw_upstream_retries_total",
			Help: "Total number of retried upstream requests by trigger",
		},
		[]string{"reason"}, // status code or "transport"
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gfw_token_refreshes_total",
			Help: "Total number of bearer token reloads",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Response Cache Metrics
	ResponseCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_lookups_total",
			Help: "Total number of response cache lookups by outcome",
		},
		[]string{"outcome"}, // "hit", "miss", "bypass"
	)

	ResponseCacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_evictions_total",
			Help: "Total number of response cache evictions by reason",
		},
		[]string{"reason"}, // "expired", "capacity"
	)

	ResponseCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "response_cache_entries",
			Help: "Current number of cached responses held in memory",
		},
	)

	// Dark Vessel Aggregation Metrics
	AggregatorFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darkvessel_fetches_total",
			Help: "Total number of per region and chunk upstream fetches by kind and result",
		},
		[]string{"kind", "result"}, // kind: "sar", "gaps", "events", "insights"
	)

	AggregatorChunks = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "darkvessel_date_chunks",
			Help:    "Number of date chunks a request range was split into",
			Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 24},
		},
	)

	DarkDetections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "darkvessel_sar_detections_total",
			Help: "Total number of unmatched SAR detections returned to clients",
		},
	)

	RiskAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_assessments_total",
			Help: "Total number of vessel risk assessments by tier",
		},
		[]string{"tier"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records one logical upstream call. statusCode is
// 0 when no response was received.
func RecordUpstreamRequest(operation string, statusCode int, duration time.Duration) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	UpstreamRequestsTotal.WithLabelValues(operation, code).Inc()
	UpstreamRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordUpstreamRetry records a retry triggered by reason.
func RecordUpstreamRetry(reason string) {
	UpstreamRetries.WithLabelValues(reason).Inc()
}

// RecordTokenRefresh records a bearer token reload.
func RecordTokenRefresh(err error) {
	if err != nil {
		TokenRefreshes.WithLabelValues("failure").Inc()
		return
	}
	TokenRefreshes.WithLabelValues("success").Inc()
}

// RecordCacheLookup records a response cache lookup outcome.
func RecordCacheLookup(outcome string) {
	ResponseCacheLookups.WithLabelValues(outcome).Inc()
}

// RecordCacheEviction records n evictions for reason.
func RecordCacheEviction(reason string, n int) {
	if n <= 0 {
		return
	}
	ResponseCacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// SetCacheEntries updates the in-memory entry gauge.
func SetCacheEntries(n int) {
	ResponseCacheEntries.Set(float64(n))
}

// RecordAggregatorFetch records one per-item upstream fetch.
func RecordAggregatorFetch(kind string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	AggregatorFetches.WithLabelValues(kind, result).Inc()
}

// RecordRiskAssessment counts an assessment by tier.
func RecordRiskAssessment(tier string) {
	RiskAssessments.WithLabelValues(tier).Inc()
}
