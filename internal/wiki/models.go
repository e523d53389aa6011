// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package wiki

// Summary is the Wikipedia REST page summary payload
// (GET /api/rest_v1/page/random/summary and /page/summary/{title}).
// Only the fields the service consumes are mapped.
type Summary struct {
	Type          string       `json:"type"`
	Title         string       `json:"title"`
	DisplayTitle  string       `json:"displaytitle,omitempty"`
	PageID        int64        `json:"pageid,omitempty"`
	Description   string       `json:"description,omitempty"`
	Extract       string       `json:"extract"`
	Lang          string       `json:"lang,omitempty"`
	Timestamp     string       `json:"timestamp,omitempty"`
	Thumbnail     *Image       `json:"thumbnail,omitempty"`
	OriginalImage *Image       `json:"originalimage,omitempty"`
	ContentURLs   *ContentURLs `json:"content_urls,omitempty"`
}

// Image is a summary thumbnail or original image reference.
type Image struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ContentURLs holds canonical page links per platform.
type ContentURLs struct {
	Desktop PlatformURLs `json:"desktop"`
	Mobile  PlatformURLs `json:"mobile"`
}

// PlatformURLs is the per-platform URL set inside content_urls.
type PlatformURLs struct {
	Page string `json:"page"`
}

// Summary type discriminator values. The REST API tags every summary;
// anything other than a standard article (disambiguation pages, redirects,
// main-page snapshots) is unsuitable for the feed.
const (
	SummaryTypeStandard       = "standard"
	SummaryTypeDisambiguation = "disambiguation"
)

// PageviewsResponse is the wikimedia pageviews "top" payload
// (GET /api/rest_v1/metrics/pageviews/top/{project}/all-access/{y}/{m}/{d}).
type PageviewsResponse struct {
	Items []PageviewsItem `json:"items"`
}

// PageviewsItem is one day's ranking inside a pageviews response.
type PageviewsItem struct {
	Project  string            `json:"project"`
	Access   string            `json:"access"`
	Year     string            `json:"year"`
	Month    string            `json:"month"`
	Day      string            `json:"day"`
	Articles []PageviewArticle `json:"articles"`
}

// PageviewArticle is a single ranked article with its daily view count.
type PageviewArticle struct {
	Article string `json:"article"`
	Views   int64  `json:"views"`
	Rank    int    `json:"rank"`
}
