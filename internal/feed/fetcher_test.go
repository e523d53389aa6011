// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feed

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/wiki"
)

// stubAPI satisfies wiki.API with a pluggable random-summary function.
type stubAPI struct {
	randomSummary func(ctx context.Context, lang string) (*wiki.Summary, error)
	calls         atomic.Int64
}

func (s *stubAPI) RandomSummary(ctx context.Context, lang string) (*wiki.Summary, error) {
	s.calls.Add(1)
	return s.randomSummary(ctx, lang)
}

func (s *stubAPI) PageSummary(ctx context.Context, lang, title string) (*wiki.Summary, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAPI) OpenSearch(ctx context.Context, lang, query string, limit int) (*wiki.OpenSearchResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAPI) PageHTML(ctx context.Context, lang, title string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAPI) TopPageviews(ctx context.Context, lang string, day time.Time) ([]wiki.PageviewArticle, error) {
	return nil, errors.New("not implemented")
}

func testFeedConfig() config.FeedConfig {
	return config.FeedConfig{
		DefaultLang:       "en",
		DefaultPageSize:   5,
		MaxPageSize:       32,
		BurstMin:          3,
		BurstMax:          5,
		AttemptMultiplier: 4,
		FastPathLimit:     2,
		MinExtractDefault: 200,
		MinExtractOther:   120,
		SponsoredGapMin:   5,
		SponsoredGapMax:   10,
	}
}

func validSummary(title string, extractLen int) *wiki.Summary {
	return &wiki.Summary{
		Type:    wiki.SummaryTypeStandard,
		Title:   title,
		Extract: strings.Repeat("a", extractLen),
		OriginalImage: &wiki.Image{
			Source: "https://upload.example/" + title + ".jpg",
			Width:  800,
			Height: 600,
		},
		ContentURLs: &wiki.ContentURLs{
			Desktop: wiki.PlatformURLs{Page: "https://en.wikipedia.org/wiki/" + title},
			Mobile:  wiki.PlatformURLs{Page: "https://en.m.wikipedia.org/wiki/" + title},
		},
	}
}

func TestFetchAcceptsValidCandidate(t *testing.T) {
	api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
		return validSummary("Alan Turing", 250), nil
	}}
	f := NewFetcher(api, testFeedConfig(), time.Second)

	item, ok := f.Fetch(context.Background(), "en")
	if !ok {
		t.Fatal("Expected valid candidate to be accepted")
	}
	if item.Title != "Alan Turing" {
		t.Errorf("Unexpected title %q", item.Title)
	}
	if item.ImageURL == "" || item.SourceURLs.Desktop == "" {
		t.Errorf("Expected image and source URLs to be populated: %+v", item)
	}
	if item.Lang != "en" {
		t.Errorf("Unexpected lang %q", item.Lang)
	}
}

func TestFetchValidationRejections(t *testing.T) {
	tests := []struct {
		name    string
		lang    string
		summary *wiki.Summary
	}{
		{
			name: "short extract default locale",
			lang: "en",
			summary: func() *wiki.Summary {
				return validSummary("Stub", 50)
			}(),
		},
		{
			name: "extract below default threshold",
			lang: "en",
			summary: func() *wiki.Summary {
				return validSummary("Almost", 199)
			}(),
		},
		{
			name: "disambiguation type",
			lang: "en",
			summary: func() *wiki.Summary {
				s := validSummary("Mercury", 250)
				s.Type = wiki.SummaryTypeDisambiguation
				return s
			}(),
		},
		{
			name: "missing image",
			lang: "en",
			summary: func() *wiki.Summary {
				s := validSummary("Obscure Moth", 250)
				s.OriginalImage = nil
				return s
			}(),
		},
		{
			name: "empty image source",
			lang: "en",
			summary: func() *wiki.Summary {
				s := validSummary("Obscure Moth", 250)
				s.OriginalImage = &wiki.Image{}
				return s
			}(),
		},
		{
			name: "empty title",
			lang: "en",
			summary: func() *wiki.Summary {
				s := validSummary("", 250)
				return s
			}(),
		},
		{
			name: "short extract non-default locale",
			lang: "de",
			summary: func() *wiki.Summary {
				return validSummary("Kurz", 119)
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
				return tt.summary, nil
			}}
			f := NewFetcher(api, testFeedConfig(), time.Second)

			if _, ok := f.Fetch(context.Background(), tt.lang); ok {
				t.Error("Expected candidate to be rejected")
			}
		})
	}
}

func TestFetchLowerThresholdForNonDefaultLocale(t *testing.T) {
	// 150 runes passes the non-default threshold (120) but not the
	// default one (200).
	api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
		return validSummary("Goethe", 150), nil
	}}
	f := NewFetcher(api, testFeedConfig(), time.Second)

	if _, ok := f.Fetch(context.Background(), "de"); !ok {
		t.Error("Expected 150-rune extract to pass for non-default locale")
	}
	if _, ok := f.Fetch(context.Background(), "en"); ok {
		t.Error("Expected 150-rune extract to fail for default locale")
	}
}

func TestFetchRejectsInvalidLanguageWithoutNetworkCall(t *testing.T) {
	api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
		return validSummary("Should Not Happen", 250), nil
	}}
	f := NewFetcher(api, testFeedConfig(), time.Second)

	for _, lang := range []string{"", "e", "english", "EN", "en_US"} {
		if _, ok := f.Fetch(context.Background(), lang); ok {
			t.Errorf("Expected lang %q to be rejected", lang)
		}
	}
	if got := api.calls.Load(); got != 0 {
		t.Errorf("Expected no upstream calls for invalid languages, got %d", got)
	}
}

func TestFetchAbsorbsUpstreamError(t *testing.T) {
	api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
		return nil, errors.New("connection reset")
	}}
	f := NewFetcher(api, testFeedConfig(), time.Second)

	if _, ok := f.Fetch(context.Background(), "en"); ok {
		t.Error("Expected upstream error to surface as no candidate")
	}
}

func TestFetchTimeoutIsNoCandidate(t *testing.T) {
	api := &stubAPI{randomSummary: func(ctx context.Context, lang string) (*wiki.Summary, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	f := NewFetcher(api, testFeedConfig(), 20*time.Millisecond)

	start := time.Now()
	_, ok := f.Fetch(context.Background(), "en")
	if ok {
		t.Error("Expected timed-out fetch to return no candidate")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Fetch did not respect its timeout, took %v", elapsed)
	}
}
