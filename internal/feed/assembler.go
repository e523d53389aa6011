// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package feed

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/wikwok/wikwok/internal/config"
)

// EntryKind discriminates the FeedEntry union.
type EntryKind string

const (
	EntryKindContent   EntryKind = "content"
	EntryKindSponsored EntryKind = "sponsored"
)

// FeedEntry is one element of the assembled sequence: either a content
// item or a sponsored placeholder. The ID is assigned once at creation
// and never regenerated, so consumers can use it as a stable rendering
// key.
type FeedEntry struct {
	ID   string       `json:"id"`
	Kind EntryKind    `json:"kind"`
	Item *ContentItem `json:"item,omitempty"`
}

// State is the feed's running assembly state. The sequence is append-only;
// ItemsSinceLastSponsored counts content entries since the last sponsored
// insertion and stays below NextSponsoredGap between Assemble calls.
type State struct {
	Sequence                []FeedEntry
	ItemsSinceLastSponsored int
	NextSponsoredGap        int
}

// Assembler interleaves sponsored placeholders into runs of content items.
// The gap between insertions is re-drawn uniformly from [gapMin, gapMax]
// after each insertion; the generator is injected so tests can fix the
// draw sequence. Not safe for concurrent use — callers serialize access
// the way Pager does.
type Assembler struct {
	gapMin int
	gapMax int
	rng    *rand.Rand
}

// NewAssembler creates an assembler with the configured gap range.
func NewAssembler(cfg config.FeedConfig, rng *rand.Rand) *Assembler {
	return &Assembler{
		gapMin: cfg.SponsoredGapMin,
		gapMax: cfg.SponsoredGapMax,
		rng:    rng,
	}
}

// InitialState returns an empty feed state with a freshly drawn first gap.
func (a *Assembler) InitialState() State {
	return State{
		NextSponsoredGap: a.rollGap(),
	}
}

// Assemble appends new items to the prior state's sequence, inserting a
// sponsored entry immediately after the content entry that crosses the
// current gap threshold. Only the explicit inputs and the injected
// generator are read; an empty batch returns the prior state unchanged.
func (a *Assembler) Assemble(newItems []ContentItem, prior State) State {
	if len(newItems) == 0 {
		return prior
	}

	next := State{
		Sequence:                prior.Sequence,
		ItemsSinceLastSponsored: prior.ItemsSinceLastSponsored,
		NextSponsoredGap:        prior.NextSponsoredGap,
	}

	for i := range newItems {
		item := newItems[i]
		next.Sequence = append(next.Sequence, FeedEntry{
			ID:   uuid.NewString(),
			Kind: EntryKindContent,
			Item: &item,
		})
		next.ItemsSinceLastSponsored++

		if next.ItemsSinceLastSponsored >= next.NextSponsoredGap {
			next.Sequence = append(next.Sequence, FeedEntry{
				ID:   uuid.NewString(),
				Kind: EntryKindSponsored,
			})
			next.ItemsSinceLastSponsored = 0
			next.NextSponsoredGap = a.rollGap()
		}
	}

	return next
}

// rollGap draws the next insertion threshold uniformly from the inclusive
// gap range.
func (a *Assembler) rollGap() int {
	return a.gapMin + a.rng.Intn(a.gapMax-a.gapMin+1)
}
