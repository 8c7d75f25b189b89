package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/cardsnipe/internal/analysis"
)

func lookupFrom(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 40.0, cfg.MinPrice)
	assert.Equal(t, 150.0, cfg.MaxPrice)
	assert.Equal(t, 50, cfg.SearchLimit)
	assert.Equal(t, 3*time.Second, cfg.SearchInterval)
	assert.Equal(t, 1, cfg.SearchBurst)
	assert.Equal(t, CompSourceActive, cfg.CompSource)
	assert.Empty(t, cfg.ScanSchedule)
	assert.False(t, cfg.EbayConfigured())
	assert.Equal(t, analysis.DefaultConfig(), cfg.Analysis)
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"EBAY_CLIENT_ID":     "id",
		"EBAY_CLIENT_SECRET": "secret",
		"EBAY_SANDBOX":       "true",
		"PORT":               "8080",
		"SCAN_SCHEDULE":      "@every 30m",
		"MIN_PRICE":          "25",
		"MAX_PRICE":          "500",
		"SEARCH_INTERVAL":    "1.5",
		"COMP_SOURCE":        "Both",
		"REDIS_ADDR":         "localhost:6379",
		"REDIS_DB":           "2",
		"DEAL_THRESHOLD":     "0.8",
		"MIN_COMP_SCORE":     "70",
		"MAX_COMPS":          "12",
		"MIN_COMPS":          "4",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.EbayConfigured())
	assert.True(t, cfg.EbaySandbox)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "@every 30m", cfg.ScanSchedule)
	assert.Equal(t, 25.0, cfg.MinPrice)
	assert.Equal(t, 500.0, cfg.MaxPrice)
	assert.Equal(t, 1500*time.Millisecond, cfg.SearchInterval)
	assert.Equal(t, CompSourceBoth, cfg.CompSource)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 0.8, cfg.Analysis.DealThreshold)
	assert.Equal(t, 70, cfg.Analysis.MinCompScore)
	assert.Equal(t, 12, cfg.Analysis.MaxComps)
	assert.Equal(t, 4, cfg.Analysis.MinComps)
	assert.Equal(t, 0.92, cfg.Analysis.DedupeThreshold, "untouched knobs keep defaults")
}

func TestFromEnv_InvalidValues(t *testing.T) {
	_, err := FromEnv(lookupFrom(map[string]string{
		"PORT":            "http",
		"MIN_PRICE":       "cheap",
		"EBAY_SANDBOX":    "maybe",
		"SEARCH_INTERVAL": "soon",
	}))
	require.Error(t, err)
	for _, key := range []string{"PORT", "MIN_PRICE", "EBAY_SANDBOX", "SEARCH_INTERVAL"} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{"min comps below three", map[string]string{"MIN_COMPS": "2"}, "MIN_COMPS"},
		{"max below min price", map[string]string{"MIN_PRICE": "100", "MAX_PRICE": "50"}, "MAX_PRICE"},
		{"threshold at one", map[string]string{"DEAL_THRESHOLD": "1"}, "DEAL_THRESHOLD"},
		{"unknown comp source", map[string]string{"COMP_SOURCE": "graded"}, "COMP_SOURCE"},
		{"search limit too large", map[string]string{"SEARCH_LIMIT": "1000"}, "SEARCH_LIMIT"},
		{"max comps below min comps", map[string]string{"MAX_COMPS": "2"}, "MAX_COMPS"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.vars))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}
