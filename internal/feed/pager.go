// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feed

import (
	"context"
	"sync"

	"github.com/wikwok/wikwok/internal/logging"
)

// PageSource supplies successive pages of validated items for a language.
// An empty page is the explicit end-of-feed signal; a transport error is
// surfaced for the caller to retry.
type PageSource interface {
	FetchPage(ctx context.Context, lang string, page, limit int) ([]ContentItem, error)
}

// Pager is the consumer-facing pagination controller: it pulls pages from
// a PageSource in strictly increasing page order, threads each batch
// through the assembler, and exposes the growing sequence plus loading and
// end-of-feed state.
//
// A session covers one language. Switching languages discards the
// sequence, the dedup set, and any in-flight page: stale responses are
// recognized by an epoch counter and dropped rather than merged.
type Pager struct {
	mu        sync.Mutex
	source    PageSource
	assembler *Assembler
	lang      string
	pageSize  int

	state          State
	seen           map[string]struct{}
	processedPages int
	hasMore        bool
	loading        bool
	epoch          uint64
}

// NewPager creates a pagination controller for a language session.
func NewPager(source PageSource, assembler *Assembler, lang string, pageSize int) *Pager {
	return &Pager{
		source:    source,
		assembler: assembler,
		lang:      lang,
		pageSize:  pageSize,
		state:     assembler.InitialState(),
		seen:      make(map[string]struct{}),
		hasMore:   true,
	}
}

// LoadMore fetches and applies the next page. It is a no-op while a load
// is already in flight or after the feed has ended. A transport error
// leaves the sequence, dedup set, and hasMore untouched so the caller can
// retry.
func (p *Pager) LoadMore(ctx context.Context) error {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return nil
	}
	p.loading = true
	epoch := p.epoch
	lang := p.lang
	page := p.processedPages
	p.mu.Unlock()

	items, err := p.source.FetchPage(ctx, lang, page, p.pageSize)

	p.mu.Lock()
	defer p.mu.Unlock()

	// A language switch happened while the request was in flight; its
	// result belongs to a dead session.
	if p.epoch != epoch {
		logging.Debug().Str("lang", lang).Int("page", page).Msg("Discarding stale page response")
		return nil
	}

	p.loading = false

	if err != nil {
		return err
	}

	if len(items) == 0 {
		p.hasMore = false
		return nil
	}

	// Duplicate retries of the same page must not re-append titles.
	fresh := items[:0:0]
	for _, item := range items {
		if _, dup := p.seen[item.Title]; dup {
			continue
		}
		p.seen[item.Title] = struct{}{}
		fresh = append(fresh, item)
	}

	p.state = p.assembler.Assemble(fresh, p.state)
	p.processedPages++
	return nil
}

// SetLanguage switches the session locale. Changing language resets the
// sequence, page counter, and dedup set, draws a fresh gap, and bumps the
// epoch so in-flight responses for the old locale are discarded. Setting
// the current language is a no-op.
func (p *Pager) SetLanguage(lang string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if lang == p.lang {
		return
	}

	p.lang = lang
	p.epoch++
	p.state = p.assembler.InitialState()
	p.seen = make(map[string]struct{})
	p.processedPages = 0
	p.hasMore = true
	p.loading = false
}

// Sequence returns a copy of the assembled entries so far. Entries only
// ever append; prior entries never move or disappear absent a language
// reset.
func (p *Pager) Sequence() []FeedEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]FeedEntry, len(p.state.Sequence))
	copy(out, p.state.Sequence)
	return out
}

// HasMore reports whether the feed may still have content. It flips false
// only on an explicit empty page.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// IsLoading reports whether a page request is in flight.
func (p *Pager) IsLoading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Language returns the session's active language.
func (p *Pager) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang
}

// ProcessedPages returns how many pages have been applied this session.
func (p *Pager) ProcessedPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processedPages
}
