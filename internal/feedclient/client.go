// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package feedclient is the consumer-side HTTP client for the feed API.
// It implements feed.PageSource over the page-fetch boundary so a Pager
// can be driven against a remote wikwok server.
package feedclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/wikwok/wikwok/internal/feed"
	"github.com/wikwok/wikwok/internal/models"
)

// Client fetches feed pages from a wikwok server.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// New creates a feed client for the given server base URL
// (e.g. "http://localhost:8036").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: "wikwok-feedctl/1.0",
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPage requests one feed page. The response is a bare JSON array of
// validated items; an empty array means end of feed and is returned as an
// empty slice, not an error.
func (c *Client) FetchPage(ctx context.Context, lang string, page, limit int) ([]feed.ContentItem, error) {
	params := url.Values{}
	params.Set("lang", lang)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	reqURL := fmt.Sprintf("%s/api/v1/feed?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var items []feed.ContentItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode feed page: %w", err)
	}
	return items, nil
}

// decodeError extracts the API error body when present, falling back to
// the bare status code.
func decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(body) > 0 {
		var apiErr models.ErrorResponse
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error != nil {
			return fmt.Errorf("feed request failed (%d %s): %s", resp.StatusCode, apiErr.Error.Code, apiErr.Error.Message)
		}
	}
	return fmt.Errorf("feed request failed with status %d", resp.StatusCode)
}
