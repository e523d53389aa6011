// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should validate, got: %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("FEED_MAX_PAGE_SIZE", "16")
	t.Setenv("WIKI_FETCH_TIMEOUT", "1s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SECURITY_CORS_ORIGINS", "https://wikwok.dev, https://app.wikwok.dev")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Feed.MaxPageSize != 16 {
		t.Errorf("Feed.MaxPageSize = %d, want 16", cfg.Feed.MaxPageSize)
	}
	if cfg.Wiki.FetchTimeout != time.Second {
		t.Errorf("Wiki.FetchTimeout = %v, want 1s", cfg.Wiki.FetchTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://wikwok.dev", "https://app.wikwok.dev"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Security.CORSOrigins[i] != origin {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], origin)
		}
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "0")

	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted port 0, want validation error")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"SERVER_PORT", "server.port"},
		{"WIKI_FETCH_TIMEOUT", "wiki.fetch_timeout"},
		{"FEED_SPONSORED_GAP_MIN", "feed.sponsored_gap_min"},
		{"SECURITY_RATE_LIMIT_REQS", "security.rate_limit_reqs"},
		{"CACHE_PAGE_TTL", "cache.page_ttl"},
		{"LOG_FORMAT", "logging.format"},
		{"HOME", ""},
		{"PATH", ""},
		{"UNRELATED_VALUE", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestMatchLangTag(t *testing.T) {
	valid := []string{"en", "fr", "pt-BR", "zh-Hant", "ja"}
	invalid := []string{"", "e", "eng", "EN", "en_US", "en-", "12", "en us"}

	for _, tag := range valid {
		if !MatchLangTag(tag) {
			t.Errorf("MatchLangTag(%q) = false, want true", tag)
		}
	}
	for _, tag := range invalid {
		if MatchLangTag(tag) {
			t.Errorf("MatchLangTag(%q) = true, want false", tag)
		}
	}
}

func TestValidateCatchesBadRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		substr string
	}{
		{"burst range inverted", func(c *Config) { c.Feed.BurstMin = 6; c.Feed.BurstMax = 3 }, "burst range"},
		{"gap range inverted", func(c *Config) { c.Feed.SponsoredGapMin = 10; c.Feed.SponsoredGapMax = 5 }, "gap range"},
		{"bad default lang", func(c *Config) { c.Feed.DefaultLang = "english" }, "language tag"},
		{"missing placeholder", func(c *Config) { c.Wiki.BaseURLTemplate = "https://wikipedia.org" }, "placeholder"},
		{"extract thresholds inverted", func(c *Config) { c.Feed.MinExtractDefault = 100; c.Feed.MinExtractOther = 120 }, "min_extract_default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error %q does not mention %q", err, tt.substr)
			}
		})
	}
}
