// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feedclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchPageDecodesItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/feed" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lang") != "en" || q.Get("page") != "2" || q.Get("limit") != "5" {
			t.Errorf("Unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"title": "Alan Turing", "summary": "s", "imageUrl": "https://img/1.jpg", "sourceUrls": {"desktop": "https://en.wikipedia.org/wiki/Alan_Turing"}, "lang": "en"},
			{"title": "Ada Lovelace", "summary": "s", "imageUrl": "https://img/2.jpg", "sourceUrls": {"desktop": "https://en.wikipedia.org/wiki/Ada_Lovelace"}, "lang": "en"}
		]`))
	}))
	defer server.Close()

	items, err := New(server.URL, 5*time.Second).FetchPage(context.Background(), "en", 2, 5)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Alan Turing" || items[1].SourceURLs.Desktop == "" {
		t.Errorf("Items not decoded: %+v", items)
	}
}

func TestFetchPageEmptyArrayIsEndOfFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	items, err := New(server.URL, 5*time.Second).FetchPage(context.Background(), "en", 7, 5)
	if err != nil {
		t.Fatalf("Empty page must not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty page, got %d items", len(items))
	}
}

func TestFetchPageSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": "error", "error": {"code": "VALIDATION_ERROR", "message": "lang must be a valid language tag"}, "timestamp": "2026-09-01T00:00:00Z"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, 5*time.Second).FetchPage(context.Background(), "nope!", 0, 5)
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "VALIDATION_ERROR") {
		t.Errorf("Expected API error code in message, got %v", err)
	}
}

func TestFetchPageNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := New(server.URL, 5*time.Second).FetchPage(context.Background(), "en", 0, 5)
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Errorf("Expected status in error, got %v", err)
	}
}
