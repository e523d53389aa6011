// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wikwok/wikwok/internal/cache"
	"github.com/wikwok/wikwok/internal/logging"
	"github.com/wikwok/wikwok/internal/models"
	"github.com/wikwok/wikwok/internal/wiki"
)

const (
	searchResultLimit = 10
	trendingTopN      = 5
)

type searchRequest struct {
	Lang  string `validate:"required,langtag"`
	Query string `validate:"required,min=1,max=200"`
}

// Search runs a title search and hydrates each hit with its page summary.
// Results are cached per (lang, query).
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req := searchRequest{
		Lang:  getStringParam(r, "lang", h.cfg.Feed.DefaultLang),
		Query: strings.TrimSpace(r.URL.Query().Get("query")),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	w.Header().Set("Cache-Control", "public, s-maxage=300, stale-while-revalidate=600")

	key := cache.GenerateKey("search", req)
	if cached, ok := h.searchCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	found, err := h.upstream.OpenSearch(r.Context(), req.Lang, req.Query, searchResultLimit)
	if err != nil {
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Search is temporarily unavailable", err)
		return
	}

	results := h.hydrateSearchResults(r, req.Lang, found.Titles)
	h.searchCache.Set(key, results)
	respondJSON(w, http.StatusOK, results)
}

// hydrateSearchResults fetches summaries for matched titles concurrently,
// keeping relevance order. Titles whose summaries fail to load or come
// back as unusable types are dropped; disambiguation pages stay, since a
// searcher may want exactly that page.
func (h *Handler) hydrateSearchResults(r *http.Request, lang string, titles []string) []models.SearchResult {
	summaries := make([]*wiki.Summary, len(titles))
	var wg sync.WaitGroup
	for i, title := range titles {
		wg.Add(1)
		go func(slot int, title string) {
			defer wg.Done()
			s, err := h.upstream.PageSummary(r.Context(), lang, title)
			if err != nil {
				logging.Debug().Err(err).Str("title", sanitizeLogValue(title)).Msg("Search hydration failed")
				return
			}
			summaries[slot] = s
		}(i, title)
	}
	wg.Wait()

	results := make([]models.SearchResult, 0, len(titles))
	for _, s := range summaries {
		if s == nil {
			continue
		}
		if s.Type != wiki.SummaryTypeStandard && s.Type != wiki.SummaryTypeDisambiguation {
			continue
		}
		result := models.SearchResult{
			Title:       s.Title,
			Description: s.Description,
			Extract:     s.Extract,
		}
		if s.Thumbnail != nil {
			result.ImageURL = s.Thumbnail.Source
		} else if s.OriginalImage != nil {
			result.ImageURL = s.OriginalImage.Source
		}
		if s.ContentURLs != nil {
			result.URL = s.ContentURLs.Desktop.Page
		}
		results = append(results, result)
	}
	return results
}

type trendingRequest struct {
	Lang string `validate:"required,langtag"`
}

// Trending serves the most viewed articles for yesterday, filtered down
// to real articles and trimmed to the top entries. When the pageviews API
// has no data for the requested project yet, the default locale's ranking
// is served instead.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	req := trendingRequest{
		Lang: getStringParam(r, "lang", h.cfg.Feed.DefaultLang),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	w.Header().Set("Cache-Control", "public, s-maxage=3600, stale-while-revalidate=7200")

	key := cache.GenerateKey("trending", req)
	if cached, ok := h.trendingCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1)

	articles, err := h.upstream.TopPageviews(r.Context(), req.Lang, yesterday)
	if errors.Is(err, wiki.ErrNotFound) && req.Lang != h.cfg.Feed.DefaultLang {
		logging.Debug().Str("lang", req.Lang).Msg("No pageviews for project, falling back to default locale")
		articles, err = h.upstream.TopPageviews(r.Context(), h.cfg.Feed.DefaultLang, yesterday)
	}
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "No trending data available yet", nil)
			return
		}
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Trending is temporarily unavailable", err)
		return
	}

	topics := buildTrendingTopics(articles, trendingTopN)
	h.trendingCache.Set(key, topics)
	respondJSON(w, http.StatusOK, topics)
}

// buildTrendingTopics filters service pages out of a pageviews ranking and
// keeps the top n real articles.
func buildTrendingTopics(articles []wiki.PageviewArticle, n int) []models.TrendingTopic {
	topics := make([]models.TrendingTopic, 0, n)
	for _, a := range articles {
		if isServicePage(a.Article) {
			continue
		}
		topics = append(topics, models.TrendingTopic{
			Title: strings.ReplaceAll(a.Article, "_", " "),
			Views: formatViews(a.Views),
		})
		if len(topics) == n {
			break
		}
	}
	return topics
}

// isServicePage reports whether a ranked entry is a non-article page
// (Main Page, Special: pages, other namespaced entries).
func isServicePage(article string) bool {
	return article == "Main_Page" || strings.Contains(article, ":")
}

// formatViews humanizes a view count: 12_345_678 -> "12.3m",
// 12_345 -> "12.3k", 999 -> "999".
func formatViews(views int64) string {
	switch {
	case views >= 1_000_000:
		return fmt.Sprintf("%.1fm", float64(views)/1_000_000)
	case views >= 1_000:
		return fmt.Sprintf("%.1fk", float64(views)/1_000)
	default:
		return fmt.Sprintf("%d", views)
	}
}

type pageRequest struct {
	Lang  string `validate:"required,langtag"`
	Title string `validate:"required,min=1,max=300"`
}

// Page proxies the rendered article HTML for a title, cached long-term
// since rendered revisions change rarely.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	req := pageRequest{
		Lang:  getStringParam(r, "lang", h.cfg.Feed.DefaultLang),
		Title: strings.TrimSpace(r.URL.Query().Get("title")),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	key := cache.GenerateKey("page", req)
	if cached, ok := h.pageCache.Get(key); ok {
		writeHTML(w, cached.([]byte))
		return
	}

	body, err := h.upstream.PageHTML(r.Context(), req.Lang, req.Title)
	if err != nil {
		if errors.Is(err, wiki.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Page not found", nil)
			return
		}
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Page is temporarily unavailable", err)
		return
	}

	h.pageCache.Set(key, body)
	writeHTML(w, body)
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, s-maxage=86400, stale-while-revalidate=172800")
	if _, err := w.Write(body); err != nil {
		logging.Error().Err(err).Msg("Failed to write HTML response")
	}
}
