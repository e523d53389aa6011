// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Package config provides layered configuration for the feed service using
// Koanf v2. Settings are resolved from built-in defaults, an optional YAML
// config file, and environment variables, with environment taking precedence.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// langTagPattern matches a two-letter language code with an optional region
// suffix ("en", "pt-BR", "zh-Hant"). Shared with the feed package's input
// validation via MatchLangTag.
var langTagPattern = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2,8})?$`)

// MatchLangTag reports whether tag is a well-formed language tag.
func MatchLangTag(tag string) bool {
	return langTagPattern.MatchString(tag)
}

// Config is the root configuration for the feed service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Wiki     WikiConfig     `koanf:"wiki"`
	Feed     FeedConfig     `koanf:"feed"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WikiConfig holds settings for the upstream Wikipedia REST boundary.
type WikiConfig struct {
	// BaseURLTemplate produces the per-language API host. The single %s verb
	// is replaced with the language code.
	BaseURLTemplate string `koanf:"base_url_template"`

	// MetricsBaseURL is the wikimedia pageviews API host (trending).
	MetricsBaseURL string `koanf:"metrics_base_url"`

	// UserAgent is sent on every upstream request. Wikimedia asks API
	// consumers to identify themselves with a contact address.
	UserAgent string `koanf:"user_agent"`

	// FetchTimeout bounds a single random-summary fetch. Exceeding it is
	// treated as "no candidate", not an error.
	FetchTimeout time.Duration `koanf:"fetch_timeout"`

	// RequestTimeout bounds non-feed upstream calls (search, page HTML,
	// trending), which tolerate more latency than the feed hot path.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RatePerSecond and RateBurst cap outbound request rate to the upstream.
	RatePerSecond float64 `koanf:"rate_per_second"`
	RateBurst     int     `koanf:"rate_burst"`

	// MaxRetries and RetryBaseDelay govern HTTP 429 backoff.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
}

// BaseURL returns the API base URL for a language.
func (w WikiConfig) BaseURL(lang string) string {
	return fmt.Sprintf(w.BaseURLTemplate, lang)
}

// FeedConfig holds feed acquisition and assembly settings.
type FeedConfig struct {
	// DefaultLang is the locale assumed when a request carries none.
	DefaultLang string `koanf:"default_lang"`

	// DefaultPageSize is the item count served when the consumer does not
	// request one; MaxPageSize is the hard clamp on requested counts.
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`

	// BurstMin and BurstMax bound the per-round concurrent fetch fan-out.
	BurstMin int `koanf:"burst_min"`
	BurstMax int `koanf:"burst_max"`

	// AttemptMultiplier sets the acquisition attempt budget relative to the
	// desired count.
	AttemptMultiplier int `koanf:"attempt_multiplier"`

	// FastPathLimit: requests at or below this size return as soon as one
	// item is accepted, to minimize time-to-first-render.
	FastPathLimit int `koanf:"fast_path_limit"`

	// MinExtractDefault and MinExtractOther are the summary length gates for
	// the default locale and all others.
	MinExtractDefault int `koanf:"min_extract_default"`
	MinExtractOther   int `koanf:"min_extract_other"`

	// SponsoredGapMin and SponsoredGapMax bound the randomized number of
	// content entries between sponsored entries (inclusive).
	SponsoredGapMin int `koanf:"sponsored_gap_min"`
	SponsoredGapMax int `koanf:"sponsored_gap_max"`
}

// SecurityConfig holds public API protection settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// CacheConfig holds TTLs for the wiki proxy caches.
type CacheConfig struct {
	SearchTTL   time.Duration `koanf:"search_ttl"`
	TrendingTTL time.Duration `koanf:"trending_ttl"`
	PageTTL     time.Duration `koanf:"page_ttl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for values that would misbehave at
// runtime. It is called by Load after all layers are merged.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if !strings.Contains(c.Wiki.BaseURLTemplate, "%s") {
		errs = append(errs, "wiki.base_url_template must contain a %s language placeholder")
	}
	if c.Wiki.FetchTimeout <= 0 {
		errs = append(errs, "wiki.fetch_timeout must be positive")
	}
	if c.Wiki.RatePerSecond <= 0 {
		errs = append(errs, "wiki.rate_per_second must be positive")
	}
	if !MatchLangTag(c.Feed.DefaultLang) {
		errs = append(errs, fmt.Sprintf("feed.default_lang %q is not a valid language tag", c.Feed.DefaultLang))
	}
	if c.Feed.MaxPageSize < 1 {
		errs = append(errs, "feed.max_page_size must be at least 1")
	}
	if c.Feed.BurstMin < 1 || c.Feed.BurstMax < c.Feed.BurstMin {
		errs = append(errs, fmt.Sprintf("feed burst range [%d,%d] is invalid", c.Feed.BurstMin, c.Feed.BurstMax))
	}
	if c.Feed.AttemptMultiplier < 1 {
		errs = append(errs, "feed.attempt_multiplier must be at least 1")
	}
	if c.Feed.SponsoredGapMin < 1 || c.Feed.SponsoredGapMax < c.Feed.SponsoredGapMin {
		errs = append(errs, fmt.Sprintf("sponsored gap range [%d,%d] is invalid", c.Feed.SponsoredGapMin, c.Feed.SponsoredGapMax))
	}
	if c.Feed.MinExtractDefault < c.Feed.MinExtractOther {
		errs = append(errs, "feed.min_extract_default must be >= feed.min_extract_other")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
