// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package models defines the JSON shapes shared by the HTTP API.
package models

import "time"

// APIError describes a failed request. Codes are stable strings the consumer
// can switch on: VALIDATION_ERROR, NOT_FOUND, UPSTREAM_ERROR,
// METHOD_NOT_ALLOWED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
//
// Successful responses are endpoint-specific: the feed and search endpoints
// return bare JSON arrays (an empty array from the feed endpoint is the
// explicit end-of-feed signal), the page proxy returns HTML.
type ErrorResponse struct {
	Status    string    `json:"status"` // always "error"
	Error     *APIError `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthStatus is the payload of the health endpoint.
type HealthStatus struct {
	Status           string  `json:"status"` // "healthy" or "degraded"
	Version          string  `json:"version"`
	UpstreamState    string  `json:"upstream_state"` // circuit breaker state
	UptimeSeconds    float64 `json:"uptime_seconds"`
	DefaultLang      string  `json:"default_lang"`
	CacheHitRatePct  float64 `json:"cache_hit_rate_pct"`
	CacheTotalKeys   int64   `json:"cache_total_keys"`
	CacheEvictions   int64   `json:"cache_evictions"`
	RateLimitPerSec  float64 `json:"rate_limit_per_sec"`
	FetchTimeoutMS   int64   `json:"fetch_timeout_ms"`
	MaxPageSize      int     `json:"max_page_size"`
	SponsoredGapMin  int     `json:"sponsored_gap_min"`
	SponsoredGapMax  int     `json:"sponsored_gap_max"`
	StartedAt        string  `json:"started_at"`
}

// TrendingTopic is one entry of the trending endpoint's response array.
type TrendingTopic struct {
	Title string `json:"title"`
	Views string `json:"views"` // humanized, e.g. "12.3k"
}

// SearchResult is one entry of the search endpoint's response array:
// an opensearch title hydrated with its page summary.
type SearchResult struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Extract     string `json:"extract,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	URL         string `json:"url,omitempty"`
}
