package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/guarzo/cardsnipe/internal/model"
)

// hardMinComps is the smallest comp set a price is ever derived from,
// whatever the configuration says.
const hardMinComps = 3

// Estimate derives a reference price from a ranked comp set: the median of
// the cheapest FloorSampleSize prices, with both tails trimmed once the
// sample is large enough. Confidence is high when the sample's coefficient
// of variation is below HighConfidenceCV.
func Estimate(comps []model.ScoredComp, cfg Config) model.Estimate {
	details := model.EstimateDetails{CompCount: len(comps)}

	minComps := max(cfg.MinComps, hardMinComps)
	if len(comps) < minComps {
		return model.Estimate{Confidence: model.ConfidenceInsufficient, Details: details}
	}

	prices := make([]float64, len(comps))
	for i, c := range comps {
		prices[i] = c.Listing.Price
	}
	sort.Float64s(prices)

	sample := prices
	if cfg.FloorSampleSize > 0 && len(sample) > cfg.FloorSampleSize {
		sample = sample[:cfg.FloorSampleSize]
	}
	if len(sample) >= cfg.TrimMinSample {
		k := int(math.Floor(float64(len(sample)) * cfg.TrimFraction))
		if k > 0 && 2*k < len(sample) {
			sample = sample[k : len(sample)-k]
			details.Trimmed = 2 * k
		}
	}

	mean, variance := stat.PopMeanVariance(sample, nil)
	sd := math.Sqrt(variance)

	details.SampleSize = len(sample)
	details.Prices = append([]float64(nil), sample...)
	details.Mean = round2(mean)
	details.StdDev = round2(sd)
	details.Min = floats.Min(sample)
	details.Max = floats.Max(sample)

	confidence := model.ConfidenceModerate
	if mean > 0 {
		details.CV = math.Round(sd/mean*1e4) / 1e4
		if sd/mean < cfg.HighConfidenceCV {
			confidence = model.ConfidenceHigh
		}
	}

	price := median(sample)
	return model.Estimate{Price: &price, Confidence: confidence, Details: details}
}

// median of an ascending slice; the two middle values are averaged for an
// even length.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
