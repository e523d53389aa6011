// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package metrics provides Prometheus instrumentation for the feed service:
// upstream fetch outcomes, batch acquisition behavior, circuit breaker state,
// API latency, and cache efficiency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Upstream (Wikipedia REST) metrics

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wiki_upstream_request_duration_seconds",
			Help:    "Duration of upstream Wikipedia API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 2.5, 5, 10},
		},
		[]string{"operation", "lang"},
	)

	UpstreamRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_upstream_request_errors_total",
			Help: "Total number of failed upstream Wikipedia API requests",
		},
		[]string{"operation", "lang", "error_type"},
	)

	// Candidate validation metrics

	CandidateResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_candidate_results_total",
			Help: "Outcomes of candidate fetches: accepted or a rejection reason",
		},
		[]string{"lang", "result"}, // "accepted", "rejected_type", "rejected_no_image", "rejected_short_extract", "rejected_no_title", "fetch_failed"
	)

	// Batch acquisition metrics

	AcquireRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_acquire_rounds",
			Help:    "Number of concurrent fetch rounds needed per batch acquisition",
			Buckets: []float64{1, 2, 3, 4, 5, 7, 10, 15, 20},
		},
	)

	AcquireShortfalls = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_acquire_shortfalls_total",
			Help: "Batch acquisitions that exhausted their attempt budget short of target",
		},
	)

	AcquireItemsReturned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_acquire_items_returned_total",
			Help: "Total validated items returned by batch acquisitions",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"breaker"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"breaker", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"breaker", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current consecutive failure count seen by the circuit breaker",
		},
		[]string{"breaker"},
	)

	// API endpoint metrics

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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Wiki proxy cache metrics

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_cache_hits_total",
			Help: "Cache hits per wiki proxy cache",
		},
		[]string{"cache"}, // "search", "trending", "page"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_cache_misses_total",
			Help: "Cache misses per wiki proxy cache",
		},
		[]string{"cache"},
	)
)
