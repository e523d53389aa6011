// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/wikwok/config.yaml",
	"/etc/wikwok/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8036,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Wiki: WikiConfig{
			BaseURLTemplate: "https://%s.wikipedia.org",
			MetricsBaseURL:  "https://wikimedia.org",
			UserAgent:       "Wikwok/1.0 (https://github.com/wikwok/wikwok; mailto:admin@wikwok.dev)",
			FetchTimeout:    2500 * time.Millisecond,
			RequestTimeout:  10 * time.Second,
			RatePerSecond:   8,
			RateBurst:       5,
			MaxRetries:      3,
			RetryBaseDelay:  time.Second,
		},
		Feed: FeedConfig{
			DefaultLang:       "en",
			DefaultPageSize:   5,
			MaxPageSize:       32,
			BurstMin:          3,
			BurstMax:          5,
			AttemptMultiplier: 4,
			FastPathLimit:     2,
			MinExtractDefault: 200,
			MinExtractOther:   120,
			SponsoredGapMin:   5,
			SponsoredGapMax:   10,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Cache: CacheConfig{
			SearchTTL:   5 * time.Minute,
			TrendingTTL: time.Hour,
			PageTTL:     24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// DefaultFeedConfig returns the built-in feed defaults. Useful for
// clients that assemble feeds locally without loading a full config.
func DefaultFeedConfig() FeedConfig {
	return defaultConfig().Feed
}

// Load resolves configuration from layered sources (highest priority last):
//
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (WIKI_FETCH_TIMEOUT, SERVER_PORT, ...)
//
// The merged configuration is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SERVER_PORT -> server.port, WIKI_FETCH_TIMEOUT -> wiki.fetch_timeout
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// supplied via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars arrive as plain strings.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envSections maps environment variable prefixes to config sections. Only
// variables with a known prefix are loaded; everything else in the process
// environment is ignored.
var envSections = map[string]string{
	"server":   "server",
	"wiki":     "wiki",
	"feed":     "feed",
	"security": "security",
	"cache":    "cache",
	"log":      "logging",
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - SERVER_PORT          -> server.port
//   - WIKI_FETCH_TIMEOUT   -> wiki.fetch_timeout
//   - FEED_MAX_PAGE_SIZE   -> feed.max_page_size
//   - LOG_LEVEL            -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	prefix, rest, found := strings.Cut(key, "_")
	if !found {
		return ""
	}
	section, ok := envSections[prefix]
	if !ok {
		return ""
	}
	return section + "." + rest
}
