// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Command feedctl is a terminal consumer for a running Wikwok server.
// It pages through the feed the way a client application would: loading
// batches, deduplicating across pages, and interleaving sponsored slots,
// then prints the assembled sequence.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/feed"
	"github.com/wikwok/wikwok/internal/feedclient"
	"github.com/wikwok/wikwok/internal/logging"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8036", "base URL of the wikwok server")
		lang      = flag.String("lang", "en", "feed language code")
		pages     = flag.Int("pages", 3, "number of pages to load")
		limit     = flag.Int("limit", 5, "items requested per page")
		seed      = flag.Int64("seed", 0, "sponsored placement seed (0 = time-based)")
		timeout   = flag.Duration("timeout", 30*time.Second, "per-page request timeout")
		logLevel  = flag.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	)
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	if !config.MatchLangTag(*lang) {
		fmt.Fprintf(os.Stderr, "invalid language tag %q\n", *lang)
		os.Exit(2)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	feedCfg := config.DefaultFeedConfig()
	client := feedclient.New(*serverURL, *timeout)
	assembler := feed.NewAssembler(feedCfg, rng)
	pager := feed.NewPager(client, assembler, *lang, *limit)

	ctx := context.Background()
	for i := 0; i < *pages; i++ {
		if !pager.HasMore() {
			fmt.Println("-- end of feed --")
			break
		}
		if err := pager.LoadMore(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "page %d failed: %v\n", pager.ProcessedPages(), err)
			os.Exit(1)
		}
	}

	printSequence(pager.Sequence())
	fmt.Printf("\n%d pages loaded, %d entries\n", pager.ProcessedPages(), len(pager.Sequence()))
}

func printSequence(entries []feed.FeedEntry) {
	for i, entry := range entries {
		switch entry.Kind {
		case feed.EntryKindSponsored:
			fmt.Printf("%3d  [sponsored]\n", i)
		case feed.EntryKindContent:
			fmt.Printf("%3d  %s\n", i, entry.Item.Title)
			fmt.Printf("     %s\n", truncate(entry.Item.Summary, 100))
		}
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
