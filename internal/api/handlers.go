// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package api

import (
	"net/http"
	"time"

	"github.com/wikwok/wikwok/internal/cache"
	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/feed"
	"github.com/wikwok/wikwok/internal/models"
	"github.com/wikwok/wikwok/internal/wiki"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	cfg      *config.Config
	upstream wiki.API
	acquirer *feed.Acquirer
	version  string

	// upstreamState reports the circuit breaker state for health checks;
	// nil when the upstream is not breaker-wrapped (tests).
	upstreamState func() string

	searchCache   *cache.Cache
	trendingCache *cache.Cache
	pageCache     *cache.Cache

	startTime time.Time
}

// NewHandler creates the HTTP handler set.
func NewHandler(cfg *config.Config, upstream wiki.API, acquirer *feed.Acquirer, upstreamState func() string, version string) *Handler {
	return &Handler{
		cfg:           cfg,
		upstream:      upstream,
		acquirer:      acquirer,
		version:       version,
		upstreamState: upstreamState,
		searchCache:   cache.New("search", cfg.Cache.SearchTTL),
		trendingCache: cache.New("trending", cfg.Cache.TrendingTTL),
		pageCache:     cache.New("page", cfg.Cache.PageTTL),
		startTime:     time.Now(),
	}
}

// Health reports service status plus the effective feed settings.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	state := "unknown"
	if h.upstreamState != nil {
		state = h.upstreamState()
	}

	status := "healthy"
	if state == "open" {
		status = "degraded"
	}

	searchStats := h.searchCache.GetStats()

	respondJSON(w, http.StatusOK, &models.HealthStatus{
		Status:          status,
		Version:         h.version,
		UpstreamState:   state,
		UptimeSeconds:   time.Since(h.startTime).Seconds(),
		DefaultLang:     h.cfg.Feed.DefaultLang,
		CacheHitRatePct: h.searchCache.HitRate(),
		CacheTotalKeys:  searchStats.TotalKeys + h.trendingCache.GetStats().TotalKeys + h.pageCache.GetStats().TotalKeys,
		CacheEvictions:  searchStats.Evictions,
		RateLimitPerSec: h.cfg.Wiki.RatePerSecond,
		FetchTimeoutMS:  h.cfg.Wiki.FetchTimeout.Milliseconds(),
		MaxPageSize:     h.cfg.Feed.MaxPageSize,
		SponsoredGapMin: h.cfg.Feed.SponsoredGapMin,
		SponsoredGapMax: h.cfg.Feed.SponsoredGapMax,
		StartedAt:       h.startTime.UTC().Format(time.RFC3339),
	})
}

// HealthLive is the liveness probe: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe. The service is not ready while the
// upstream circuit is open: it could only serve empty feeds.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.upstreamState != nil && h.upstreamState() == "open" {
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Upstream circuit open", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
