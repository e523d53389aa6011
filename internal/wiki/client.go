// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package wiki implements the upstream Wikipedia REST boundary: a
// rate-limited HTTP client with 429 backoff plus a circuit breaker wrapper
// that sheds load when the upstream degrades.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/metrics"
)

// ErrNotFound reports an upstream 404. Callers use it to distinguish
// "this page/day does not exist" from transport failures; the trending
// handler falls back to a different project on it.
var ErrNotFound = errors.New("wiki: not found")

// maxErrorBodyBytes caps how much of an upstream error body is read for
// error messages.
const maxErrorBodyBytes = 512

// API is the upstream surface consumed by the feed and the wiki proxy
// handlers. Both Client and CircuitBreakerClient satisfy it.
type API interface {
	RandomSummary(ctx context.Context, lang string) (*Summary, error)
	PageSummary(ctx context.Context, lang, title string) (*Summary, error)
	OpenSearch(ctx context.Context, lang, query string, limit int) (*OpenSearchResult, error)
	PageHTML(ctx context.Context, lang, title string) ([]byte, error)
	TopPageviews(ctx context.Context, lang string, day time.Time) ([]PageviewArticle, error)
}

// OpenSearchResult is the decoded opensearch response: the original query
// plus the matching titles in relevance order.
type OpenSearchResult struct {
	Query  string
	Titles []string
}

// Client talks to the Wikipedia REST API and the wikimedia pageviews API.
//
// Outbound requests pass through a token-bucket rate limiter before they
// leave the process, and HTTP 429 responses are retried with exponential
// backoff honoring Retry-After. Safe for concurrent use.
type Client struct {
	cfg            config.WikiConfig
	client         *http.Client
	limiter        *rate.Limiter
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from the wiki configuration.
func NewClient(cfg config.WikiConfig) *Client {
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// RandomSummary fetches one random article summary for a language.
func (c *Client) RandomSummary(ctx context.Context, lang string) (*Summary, error) {
	reqURL := c.cfg.BaseURL(lang) + "/api/rest_v1/page/random/summary"

	var summary Summary
	if err := c.getJSON(ctx, "random_summary", lang, reqURL, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// PageSummary fetches the summary for a specific title.
func (c *Client) PageSummary(ctx context.Context, lang, title string) (*Summary, error) {
	reqURL := fmt.Sprintf("%s/api/rest_v1/page/summary/%s", c.cfg.BaseURL(lang), escapeTitle(title))

	var summary Summary
	if err := c.getJSON(ctx, "page_summary", lang, reqURL, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// OpenSearch runs a prefix title search via the MediaWiki action API.
//
// The opensearch response is a positional four-element array
// [query, titles, descriptions, urls]; only the first two are used.
func (c *Client) OpenSearch(ctx context.Context, lang, query string, limit int) (*OpenSearchResult, error) {
	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("format", "json")
	params.Set("search", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	reqURL := fmt.Sprintf("%s/w/api.php?%s", c.cfg.BaseURL(lang), params.Encode())

	var raw []json.RawMessage
	if err := c.getJSON(ctx, "opensearch", lang, reqURL, &raw); err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, fmt.Errorf("opensearch: malformed response with %d elements", len(raw))
	}

	result := &OpenSearchResult{}
	if err := json.Unmarshal(raw[0], &result.Query); err != nil {
		return nil, fmt.Errorf("opensearch: decode query: %w", err)
	}
	if err := json.Unmarshal(raw[1], &result.Titles); err != nil {
		return nil, fmt.Errorf("opensearch: decode titles: %w", err)
	}
	return result, nil
}

// PageHTML fetches the rendered Parsoid HTML for a title.
func (c *Client) PageHTML(ctx context.Context, lang, title string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/api/rest_v1/page/html/%s", c.cfg.BaseURL(lang), escapeTitle(title))

	resp, err := c.doRequestWithRateLimit(ctx, "page_html", lang, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, "page_html", lang); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordError("page_html", lang, "read_body")
		return nil, fmt.Errorf("page_html: read body: %w", err)
	}
	return body, nil
}

// TopPageviews fetches the most viewed articles for a project on a given
// day. Returns ErrNotFound when the day is not yet published upstream.
func (c *Client) TopPageviews(ctx context.Context, lang string, day time.Time) ([]PageviewArticle, error) {
	reqURL := fmt.Sprintf("%s/api/rest_v1/metrics/pageviews/top/%s.wikipedia/all-access/%04d/%02d/%02d",
		c.cfg.MetricsBaseURL, lang, day.Year(), day.Month(), day.Day())

	var pv PageviewsResponse
	if err := c.getJSON(ctx, "top_pageviews", lang, reqURL, &pv); err != nil {
		return nil, err
	}
	if len(pv.Items) == 0 {
		return nil, nil
	}
	return pv.Items[0].Articles, nil
}

// getJSON performs a GET and decodes the JSON body into result.
func (c *Client) getJSON(ctx context.Context, operation, lang, reqURL string, result interface{}) error {
	resp, err := c.doRequestWithRateLimit(ctx, operation, lang, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, operation, lang); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		recordError(operation, lang, "decode")
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// doRequestWithRateLimit performs an HTTP GET with outbound rate limiting
// and automatic retry on HTTP 429. Backoff doubles per attempt, and an
// upstream Retry-After header overrides the computed delay.
func (c *Client) doRequestWithRateLimit(ctx context.Context, operation, lang, reqURL string) (*http.Response, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues(operation, lang).Observe(time.Since(start).Seconds())
	}()

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Token bucket gate before the request leaves the process.
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			recordError(operation, lang, classifyTransportError(err))
			return nil, fmt.Errorf("HTTP request failed: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			recordError(operation, lang, "rate_limited")
			lastErr = fmt.Errorf("rate limit exceeded after %d retries (HTTP 429)", c.maxRetries)
			break
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))

		// Retry-After (RFC 6585) overrides the exponential backoff.
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// checkStatus maps non-200 responses to errors, folding 404 into
// ErrNotFound.
func (c *Client) checkStatus(resp *http.Response, operation, lang string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	recordError(operation, lang, fmt.Sprintf("http_%d", resp.StatusCode))

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	}

	body := readBodyForError(resp.Body)
	return fmt.Errorf("%s request failed with status %d: %s", operation, resp.StatusCode, string(body))
}

func recordError(operation, lang, errorType string) {
	metrics.UpstreamRequestErrors.WithLabelValues(operation, lang, errorType).Inc()
}

// classifyTransportError buckets transport failures for metrics.
func classifyTransportError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "network"
	}
}

// readBodyForError reads a truncated response body for inclusion in error
// messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return []byte("(unreadable body)")
	}
	return body
}

// escapeTitle converts an article title to its REST path segment form:
// spaces become underscores, then the segment is percent-encoded.
func escapeTitle(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
