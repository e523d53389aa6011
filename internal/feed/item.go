// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package feed implements the acquisition and assembly pipeline: turning
// single "random article" calls against a flaky upstream into a qualified,
// deduplicated, sequenced, ad-interleaved feed with pagination semantics.
package feed

import (
	"github.com/wikwok/wikwok/internal/wiki"
)

// ContentItem is a validated, feed-eligible article. Items are immutable
// once created; the title is the dedup key for the life of a feed session.
type ContentItem struct {
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	ImageURL    string     `json:"imageUrl"`
	ImageWidth  int        `json:"imageWidth,omitempty"`
	ImageHeight int        `json:"imageHeight,omitempty"`
	SourceURLs  SourceURLs `json:"sourceUrls"`
	Lang        string     `json:"lang"`
}

// SourceURLs carries the canonical page links for an item.
type SourceURLs struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile,omitempty"`
}

// newContentItem builds a ContentItem from a summary that already passed
// validation, so the image and URL fields are known to be present.
func newContentItem(s *wiki.Summary, lang string) *ContentItem {
	item := &ContentItem{
		Title:       s.Title,
		Summary:     s.Extract,
		ImageURL:    s.OriginalImage.Source,
		ImageWidth:  s.OriginalImage.Width,
		ImageHeight: s.OriginalImage.Height,
		Lang:        lang,
	}
	if s.ContentURLs != nil {
		item.SourceURLs.Desktop = s.ContentURLs.Desktop.Page
		item.SourceURLs.Mobile = s.ContentURLs.Mobile.Page
	}
	return item
}
