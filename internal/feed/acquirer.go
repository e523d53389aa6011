// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feed

import (
	"context"
	"sync"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/logging"
	"github.com/wikwok/wikwok/internal/metrics"
)

// Acquirer orchestrates concurrent bursts of candidate fetches until a
// target count of unique validated items is met or the attempt budget is
// exhausted. A short result is valid, not an error: the caller decides
// whether it means the feed is near its end.
type Acquirer struct {
	fetcher *Fetcher
	cfg     config.FeedConfig
}

// NewAcquirer creates a batch acquirer on top of a candidate fetcher.
func NewAcquirer(fetcher *Fetcher, cfg config.FeedConfig) *Acquirer {
	return &Acquirer{
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// Acquire collects up to desired unique validated items for a language.
//
// Fetches run in rounds of BurstMin..BurstMax concurrent calls sized to
// the remaining need, so outstanding upstream requests never exceed the
// current burst. Round results are processed in dispatch order, which
// keeps dedup deterministic when two fetches in the same round return the
// same title.
//
// The attempt budget (AttemptMultiplier x desired) is a safety brake
// against pathological upstream failure rates. When desired is at most
// FastPathLimit the first accepted item ends the call early to minimize
// time-to-first-render; larger follow-up pages fill in the rest.
func (a *Acquirer) Acquire(ctx context.Context, lang string, desired int) []ContentItem {
	desired = clamp(desired, 1, a.cfg.MaxPageSize)

	seen := make(map[string]struct{}, desired)
	items := make([]ContentItem, 0, desired)
	attempts := 0
	budget := desired * a.cfg.AttemptMultiplier
	rounds := 0

	for len(items) < desired && attempts < budget && ctx.Err() == nil {
		remaining := desired - len(items)
		burst := clamp(remaining, a.cfg.BurstMin, a.cfg.BurstMax)

		// Positional slots keep processing order equal to dispatch order.
		results := make([]*ContentItem, burst)
		var wg sync.WaitGroup
		for i := 0; i < burst; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				if item, ok := a.fetcher.Fetch(ctx, lang); ok {
					results[slot] = item
				}
			}(i)
		}
		wg.Wait()

		attempts += burst
		rounds++

		for _, item := range results {
			if item == nil {
				continue
			}
			if _, dup := seen[item.Title]; dup {
				continue
			}
			seen[item.Title] = struct{}{}
			items = append(items, *item)
			if len(items) == desired {
				break
			}
		}

		// Above-the-fold fast path.
		if desired <= a.cfg.FastPathLimit && len(items) >= 1 {
			break
		}
	}

	metrics.AcquireRounds.Observe(float64(rounds))
	metrics.AcquireItemsReturned.Add(float64(len(items)))
	if len(items) < desired && desired > a.cfg.FastPathLimit {
		metrics.AcquireShortfalls.Inc()
		logging.Warn().
			Str("lang", lang).
			Int("desired", desired).
			Int("returned", len(items)).
			Int("attempts", attempts).
			Msg("Batch acquisition fell short of target")
	}

	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
