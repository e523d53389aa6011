// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package wiki

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/logging"
	"github.com/wikwok/wikwok/internal/metrics"
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern so a
// degraded upstream sheds load fast instead of stacking up slow requests.
//
// A 404 is a valid answer (missing page, unpublished pageviews day), not an
// upstream fault, so ErrNotFound never counts toward tripping the breaker.
//
// DETERMINISM NOTE: the breaker uses real time (via sony/gobreaker) for its
// interval and timeout calculations. The timing determines when to recover
// from failures, not data integrity; unit tests should exercise the wrapped
// client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient creates a Wikipedia client with circuit breaker
// protection. Configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 30 second timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(cfg config.WikiConfig) *CircuitBreakerClient {
	client := NewClient(cfg)
	cbName := "wikipedia-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			// Missing pages are a normal upstream answer.
			return err == nil || errors.Is(err, ErrNotFound)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// State returns the current breaker state as a label string for health
// reporting.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// execute wraps an upstream call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else if !errors.Is(err, ErrNotFound) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()

			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return result, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error
// checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// RandomSummary fetches a random article summary with circuit breaker
// protection.
func (cbc *CircuitBreakerClient) RandomSummary(ctx context.Context, lang string) (*Summary, error) {
	return castResult[Summary](cbc.execute(func() (interface{}, error) {
		return cbc.client.RandomSummary(ctx, lang)
	}))
}

// PageSummary fetches a titled summary with circuit breaker protection.
func (cbc *CircuitBreakerClient) PageSummary(ctx context.Context, lang, title string) (*Summary, error) {
	return castResult[Summary](cbc.execute(func() (interface{}, error) {
		return cbc.client.PageSummary(ctx, lang, title)
	}))
}

// OpenSearch runs a title search with circuit breaker protection.
func (cbc *CircuitBreakerClient) OpenSearch(ctx context.Context, lang, query string, limit int) (*OpenSearchResult, error) {
	return castResult[OpenSearchResult](cbc.execute(func() (interface{}, error) {
		return cbc.client.OpenSearch(ctx, lang, query, limit)
	}))
}

// PageHTML fetches rendered page HTML with circuit breaker protection.
func (cbc *CircuitBreakerClient) PageHTML(ctx context.Context, lang, title string) ([]byte, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.PageHTML(ctx, lang, title)
	})
	if err != nil {
		return nil, err
	}
	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return body, nil
}

// TopPageviews fetches daily top articles with circuit breaker protection.
func (cbc *CircuitBreakerClient) TopPageviews(ctx context.Context, lang string, day time.Time) ([]PageviewArticle, error) {
	result, err := cbc.execute(func() (interface{}, error) {
		return cbc.client.TopPageviews(ctx, lang, day)
	})
	if err != nil || result == nil {
		return nil, err
	}
	articles, ok := result.([]PageviewArticle)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return articles, nil
}
