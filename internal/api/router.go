// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wikwok/wikwok/internal/config"
)

// Router wires handlers and middleware into the chi routing tree.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates the router for the given handler set.
func NewRouter(handler *Handler, cfg config.SecurityConfig) *Router {
	return &Router{
		handler:    handler,
		middleware: NewMiddleware(cfg),
	}
}

// Setup builds the complete routing tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS is global
	// so OPTIONS preflights are handled everywhere.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.Use(requestLogger)

	// Prometheus scrape endpoint, outside the rate-limited API tree.
	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints get a permissive limit so monitors can poll often.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Use(securityHeaders)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Data endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(securityHeaders)
		r.Use(prometheusMetrics)

		r.Get("/feed", router.handler.Feed)

		r.Route("/wiki", func(r chi.Router) {
			r.Get("/search", router.handler.Search)
			r.Get("/trending", router.handler.Trending)
			r.Get("/page", router.handler.Page)
		})
	})

	return r
}
