// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wikwok/wikwok/internal/config"
)

func testClient(serverURL string) *Client {
	return NewClient(config.WikiConfig{
		BaseURLTemplate: serverURL + "/%s",
		MetricsBaseURL:  serverURL,
		UserAgent:       "wikwok-test/1.0",
		RequestTimeout:  5 * time.Second,
		RatePerSecond:   1000,
		RateBurst:       1000,
		MaxRetries:      2,
		RetryBaseDelay:  time.Millisecond,
	})
}

func TestRandomSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en/api/rest_v1/page/random/summary" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "wikwok-test/1.0" {
			t.Errorf("Expected custom User-Agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"type": "standard",
			"title": "Gordian Knot",
			"extract": "The cutting of the Gordian Knot is an Ancient Greek legend associated with Alexander the Great.",
			"lang": "en",
			"originalimage": {"source": "https://upload.example/knot.jpg", "width": 800, "height": 600},
			"content_urls": {
				"desktop": {"page": "https://en.wikipedia.org/wiki/Gordian_Knot"},
				"mobile": {"page": "https://en.m.wikipedia.org/wiki/Gordian_Knot"}
			}
		}`))
	}))
	defer server.Close()

	summary, err := testClient(server.URL).RandomSummary(context.Background(), "en")
	if err != nil {
		t.Fatalf("RandomSummary failed: %v", err)
	}
	if summary.Type != SummaryTypeStandard {
		t.Errorf("Expected standard type, got %q", summary.Type)
	}
	if summary.Title != "Gordian Knot" {
		t.Errorf("Unexpected title %q", summary.Title)
	}
	if summary.OriginalImage == nil || summary.OriginalImage.Source != "https://upload.example/knot.jpg" {
		t.Errorf("Original image not decoded: %+v", summary.OriginalImage)
	}
	if summary.ContentURLs == nil || summary.ContentURLs.Mobile.Page != "https://en.m.wikipedia.org/wiki/Gordian_Knot" {
		t.Errorf("Content URLs not decoded: %+v", summary.ContentURLs)
	}
}

func TestPageSummaryEscapesTitle(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"type": "standard", "title": "A/B testing", "extract": "x"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).PageSummary(context.Background(), "en", "A/B testing")
	if err != nil {
		t.Fatalf("PageSummary failed: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/page/summary/A%2FB_testing") {
		t.Errorf("Expected escaped title in path, got %s", gotPath)
	}
}

func TestPageSummaryNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server.URL).PageSummary(context.Background(), "en", "No Such Page")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRateLimitRetryWithBackoff(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"type": "standard", "title": "Recovered", "extract": "x"}`))
	}))
	defer server.Close()

	summary, err := testClient(server.URL).RandomSummary(context.Background(), "en")
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if summary.Title != "Recovered" {
		t.Errorf("Unexpected title %q", summary.Title)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRateLimitExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).RandomSummary(context.Background(), "en")
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestOpenSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("action") != "opensearch" {
			t.Errorf("Expected action=opensearch, got %q", q.Get("action"))
		}
		if q.Get("search") != "alan tur" {
			t.Errorf("Unexpected search term %q", q.Get("search"))
		}
		if q.Get("limit") != "10" {
			t.Errorf("Unexpected limit %q", q.Get("limit"))
		}
		_, _ = w.Write([]byte(`["alan tur", ["Alan Turing", "Alan Turing Institute"], ["", ""], ["https://en.wikipedia.org/wiki/Alan_Turing", "https://en.wikipedia.org/wiki/Alan_Turing_Institute"]]`))
	}))
	defer server.Close()

	result, err := testClient(server.URL).OpenSearch(context.Background(), "en", "alan tur", 10)
	if err != nil {
		t.Fatalf("OpenSearch failed: %v", err)
	}
	if result.Query != "alan tur" {
		t.Errorf("Unexpected query %q", result.Query)
	}
	if len(result.Titles) != 2 || result.Titles[0] != "Alan Turing" {
		t.Errorf("Unexpected titles %v", result.Titles)
	}
}

func TestOpenSearchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["only query"]`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).OpenSearch(context.Background(), "en", "x", 10)
	if err == nil {
		t.Fatal("Expected error for malformed opensearch response")
	}
}

func TestPageHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.EscapedPath(), "/page/html/Alan_Turing") {
			t.Errorf("Unexpected path %s", r.URL.EscapedPath())
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Alan Turing</body></html>`))
	}))
	defer server.Close()

	body, err := testClient(server.URL).PageHTML(context.Background(), "en", "Alan Turing")
	if err != nil {
		t.Fatalf("PageHTML failed: %v", err)
	}
	if !strings.Contains(string(body), "Alan Turing") {
		t.Errorf("Unexpected body %q", body)
	}
}

func TestTopPageviews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rest_v1/metrics/pageviews/top/en.wikipedia/all-access/2026/08/31" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"items": [{"project": "en.wikipedia", "articles": [
			{"article": "Main_Page", "views": 5000000, "rank": 1},
			{"article": "Alan_Turing", "views": 120300, "rank": 2}
		]}]}`))
	}))
	defer server.Close()

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	articles, err := testClient(server.URL).TopPageviews(context.Background(), "en", day)
	if err != nil {
		t.Fatalf("TopPageviews failed: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("Expected 2 articles, got %d", len(articles))
	}
	if articles[1].Article != "Alan_Turing" || articles[1].Views != 120300 {
		t.Errorf("Unexpected article %+v", articles[1])
	}
}

func TestTopPageviewsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type": "not_found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := testClient(server.URL).TopPageviews(context.Background(), "en", day)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unpublished day, got %v", err)
	}
}

func TestEscapeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alan Turing", "Alan_Turing"},
		{"C++", "C++"},
		{"A/B testing", "A%2FB_testing"},
		{"Čapek", "%C4%8Capek"},
	}

	for _, tt := range tests {
		if got := escapeTitle(tt.in); got != tt.want {
			t.Errorf("escapeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
