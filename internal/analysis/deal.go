package analysis

import "github.com/guarzo/cardsnipe/internal/model"

// Appraise estimates the listing's reference price from comps and decides
// whether the listing is a deal. The estimate is always returned; the deal
// is nil unless the listing is at or below DealThreshold of the reference.
func Appraise(listing model.Listing, comps []model.ScoredComp, cfg Config) (model.Estimate, *model.Deal) {
	est := Estimate(comps, cfg)
	if est.Price == nil || *est.Price <= 0 || est.Confidence == model.ConfidenceInsufficient {
		return est, nil
	}

	ref := *est.Price
	ratio := listing.Price / ref
	if ratio > cfg.DealThreshold {
		return est, nil
	}

	n := min(cfg.TopCompsShown, len(comps))
	top := make([]model.CompSummary, 0, n)
	for _, c := range comps[:n] {
		top = append(top, model.CompSummary{
			Title: c.Listing.Title,
			Price: c.Listing.Price,
			Score: c.Score,
			URL:   c.Listing.URL,
		})
	}

	return est, &model.Deal{
		Listing:        listing,
		ReferencePrice: round2(ref),
		PercentUnder:   round2((1 - ratio) * 100),
		Confidence:     est.Confidence,
		CompsUsed:      len(comps),
		TopComps:       top,
	}
}

// EvaluateDeal returns a deal record for listing, or nil when there is not
// enough evidence or the price is not far enough below the reference.
func EvaluateDeal(listing model.Listing, comps []model.ScoredComp, cfg Config) *model.Deal {
	_, deal := Appraise(listing, comps, cfg)
	return deal
}
