package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/guarzo/cardsnipe/internal/model"
)

// SanitizeConfig holds configuration for price sanitization
type SanitizeConfig struct {
	MinPriceUSD float64 // Minimum believable price (default 0.01)
	MaxPriceUSD float64 // Prices above this are placeholders, not sales (default 100000)
}

// DefaultSanitizeConfig returns default sanitization settings
func DefaultSanitizeConfig() *SanitizeConfig {
	return &SanitizeConfig{
		MinPriceUSD: 0.01,
		MaxPriceUSD: 100000,
	}
}

// SanitizePrice validates a single listing price. Invalid prices come back
// as 0 so callers can drop them with a single comparison.
func SanitizePrice(price float64, config *SanitizeConfig) float64 {
	if config == nil {
		config = DefaultSanitizeConfig()
	}

	// Check for obvious invalid prices (69420 pattern, negative, NaN)
	if isInvalidPrice(price) {
		return 0
	}

	if price < config.MinPriceUSD || price > config.MaxPriceUSD {
		return 0
	}

	return price
}

// SanitizeListings drops listings whose price fails SanitizePrice. The
// returned slice never aliases the input.
func SanitizeListings(listings []model.Listing, config *SanitizeConfig) []model.Listing {
	clean := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if SanitizePrice(l.Price, config) > 0 {
			clean = append(clean, l)
		}
	}
	return clean
}

func isInvalidPrice(price float64) bool {
	// Check for NaN or Inf
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return true
	}

	if price <= 0 {
		return true
	}

	// Joke and placeholder asking prices
	if strings.Contains(formatPrice(price), "69420") {
		return true
	}

	testValues := []float64{12345.67, 99999.99, 11111.11, 88888.88}
	for _, test := range testValues {
		if math.Abs(price-test) < 0.01 {
			return true
		}
	}

	return false
}

func formatPrice(price float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", price), "0"), ".")
}
