// Package config loads runtime configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/guarzo/cardsnipe/internal/analysis"
)

// Comparable sources.
const (
	CompSourceActive = "active"
	CompSourceSold   = "sold"
	CompSourceBoth   = "both"
)

// Config holds application configuration
type Config struct {
	EbayClientID     string
	EbayClientSecret string
	EbaySandbox      bool

	Port      int
	LogLevel  string
	LogPretty bool

	RosterFile   string
	ScanSchedule string // cron spec; empty disables scheduled scans

	MinPrice       float64
	MaxPrice       float64
	SearchLimit    int
	SearchInterval time.Duration
	SearchBurst    int
	CompSource     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheFile     string

	Analysis analysis.Config
}

// Load reads configuration from environment variables, after loading .env
// if it exists. Malformed values are errors, not silently defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	e := &env{lookup: lookup}
	defaults := analysis.DefaultConfig()

	cfg := &Config{
		EbayClientID:     e.str("EBAY_CLIENT_ID", ""),
		EbayClientSecret: e.str("EBAY_CLIENT_SECRET", ""),
		EbaySandbox:      e.boolean("EBAY_SANDBOX", false),

		Port:      e.integer("PORT", 3000),
		LogLevel:  e.str("LOG_LEVEL", "info"),
		LogPretty: e.boolean("LOG_PRETTY", false),

		RosterFile:   e.str("ROSTER_FILE", ""),
		ScanSchedule: e.str("SCAN_SCHEDULE", ""),

		MinPrice:       e.float("MIN_PRICE", 40),
		MaxPrice:       e.float("MAX_PRICE", 150),
		SearchLimit:    e.integer("SEARCH_LIMIT", 50),
		SearchInterval: e.duration("SEARCH_INTERVAL", 3*time.Second),
		SearchBurst:    e.integer("SEARCH_BURST", 1),
		CompSource:     strings.ToLower(e.str("COMP_SOURCE", CompSourceActive)),

		RedisAddr:     e.str("REDIS_ADDR", ""),
		RedisPassword: e.str("REDIS_PASSWORD", ""),
		RedisDB:       e.integer("REDIS_DB", 0),
		CacheFile:     e.str("CACHE_FILE", ""),
	}

	cfg.Analysis = defaults
	cfg.Analysis.DealThreshold = e.float("DEAL_THRESHOLD", defaults.DealThreshold)
	cfg.Analysis.MinCompScore = e.integer("MIN_COMP_SCORE", defaults.MinCompScore)
	cfg.Analysis.MaxComps = e.integer("MAX_COMPS", defaults.MaxComps)
	cfg.Analysis.MinComps = e.integer("MIN_COMPS", defaults.MinComps)

	if len(e.errs) > 0 {
		return nil, errors.Join(e.errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.MinPrice < 0 {
		errs = append(errs, fmt.Errorf("MIN_PRICE must not be negative"))
	}
	if c.MaxPrice > 0 && c.MaxPrice < c.MinPrice {
		errs = append(errs, fmt.Errorf("MAX_PRICE (%v) is below MIN_PRICE (%v)", c.MaxPrice, c.MinPrice))
	}
	if c.SearchLimit <= 0 || c.SearchLimit > 200 {
		errs = append(errs, fmt.Errorf("SEARCH_LIMIT must be between 1 and 200, got %d", c.SearchLimit))
	}
	if c.SearchInterval < 0 {
		errs = append(errs, fmt.Errorf("SEARCH_INTERVAL must not be negative"))
	}
	if c.SearchBurst < 1 {
		errs = append(errs, fmt.Errorf("SEARCH_BURST must be at least 1"))
	}
	switch c.CompSource {
	case CompSourceActive, CompSourceSold, CompSourceBoth:
	default:
		errs = append(errs, fmt.Errorf("COMP_SOURCE must be active, sold or both, got %q", c.CompSource))
	}
	if c.Analysis.DealThreshold <= 0 || c.Analysis.DealThreshold >= 1 {
		errs = append(errs, fmt.Errorf("DEAL_THRESHOLD must be between 0 and 1, got %v", c.Analysis.DealThreshold))
	}
	if c.Analysis.MinCompScore < 0 {
		errs = append(errs, fmt.Errorf("MIN_COMP_SCORE must not be negative"))
	}
	if c.Analysis.MinComps < 3 {
		errs = append(errs, fmt.Errorf("MIN_COMPS must be at least 3, got %d", c.Analysis.MinComps))
	}
	if c.Analysis.MaxComps < c.Analysis.MinComps {
		errs = append(errs, fmt.Errorf("MAX_COMPS (%d) is below MIN_COMPS (%d)", c.Analysis.MaxComps, c.Analysis.MinComps))
	}
	return errors.Join(errs...)
}

// EbayConfigured reports whether Browse API credentials are present.
func (c *Config) EbayConfigured() bool {
	return c.EbayClientID != "" && c.EbayClientSecret != ""
}

// env reads typed values and collects parse errors.
type env struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func (e *env) integer(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (e *env) float(key string, def float64) float64 {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (e *env) boolean(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

// duration accepts Go durations ("3s", "500ms") or a bare number of seconds.
func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	e.errs = append(e.errs, fmt.Errorf("%s: invalid duration %q", key, v))
	return def
}
