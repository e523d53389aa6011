// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feed

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/logging"
	"github.com/wikwok/wikwok/internal/metrics"
	"github.com/wikwok/wikwok/internal/wiki"
)

// Candidate validation outcomes, recorded per fetch for observability.
const (
	resultAccepted      = "accepted"
	resultRejectedType  = "rejected_type"
	resultRejectedImage = "rejected_no_image"
	resultRejectedShort = "rejected_short_extract"
	resultRejectedTitle = "rejected_no_title"
	resultFetchFailed   = "fetch_failed"
)

// Fetcher issues single bounded-time requests for one random candidate
// article and applies the quality gate. Random endpoints return a high
// fraction of unusable pages (stubs, disambiguation, no lead image), so
// the validation step is strict: callers see either a validated item or
// nothing, never an error.
type Fetcher struct {
	api          wiki.API
	cfg          config.FeedConfig
	fetchTimeout time.Duration
}

// NewFetcher creates a candidate fetcher. fetchTimeout bounds each
// individual upstream call; exceeding it counts as "no candidate".
func NewFetcher(api wiki.API, cfg config.FeedConfig, fetchTimeout time.Duration) *Fetcher {
	return &Fetcher{
		api:          api,
		cfg:          cfg,
		fetchTimeout: fetchTimeout,
	}
}

// Fetch requests one random candidate for a language. All failure modes
// (invalid language, timeout, transport error, validation rejection)
// collapse to (nil, false); the bool reports whether an item was accepted.
func (f *Fetcher) Fetch(ctx context.Context, lang string) (*ContentItem, bool) {
	// Invalid language tags never reach the network.
	if !config.MatchLangTag(lang) {
		logging.Debug().Str("lang", lang).Msg("Rejected invalid language tag before fetch")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()

	summary, err := f.api.RandomSummary(ctx, lang)
	if err != nil {
		logging.Debug().Err(err).Str("lang", lang).Msg("Candidate fetch failed")
		metrics.CandidateResults.WithLabelValues(lang, resultFetchFailed).Inc()
		return nil, false
	}

	result := f.validate(summary, lang)
	metrics.CandidateResults.WithLabelValues(lang, result).Inc()
	if result != resultAccepted {
		logging.Debug().Str("lang", lang).Str("title", summary.Title).Str("reason", result).Msg("Candidate rejected")
		return nil, false
	}

	return newContentItem(summary, lang), true
}

// validate applies the quality gate: standard article type, a lead image,
// and an extract meeting the locale's minimum length. The default locale
// threshold is higher since its article summaries run longer.
func (f *Fetcher) validate(s *wiki.Summary, lang string) string {
	if s.Title == "" {
		return resultRejectedTitle
	}
	if s.Type != wiki.SummaryTypeStandard {
		return resultRejectedType
	}
	if s.OriginalImage == nil || s.OriginalImage.Source == "" {
		return resultRejectedImage
	}
	if utf8.RuneCountInString(s.Extract) < f.minExtract(lang) {
		return resultRejectedShort
	}
	return resultAccepted
}

func (f *Fetcher) minExtract(lang string) int {
	if lang == f.cfg.DefaultLang {
		return f.cfg.MinExtractDefault
	}
	return f.cfg.MinExtractOther
}
