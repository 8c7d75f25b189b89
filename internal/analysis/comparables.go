package analysis

import (
	"sort"

	"github.com/guarzo/cardsnipe/internal/model"
)

// FindComparables builds the comp set for a live listing from a pool of
// candidate listings: invalid prices and the listing itself are dropped,
// the rest are gated, scored, filtered by MinCompScore, ranked, deduped
// and truncated to MaxComps.
func FindComparables(listing model.Listing, pool []model.Listing, cfg Config) []model.ScoredComp {
	comps, _ := Match(listing, pool, cfg)
	return comps
}

// Match is FindComparables that also counts why candidates were turned
// away, keyed by gate reason or one of "self", "bad_price", "low_score"
// and "duplicate".
func Match(listing model.Listing, pool []model.Listing, cfg Config) ([]model.ScoredComp, map[string]int) {
	rejected := make(map[string]int)
	var scored []model.ScoredComp

	for _, cand := range pool {
		if isSelf(listing, cand) {
			rejected["self"]++
			continue
		}
		if SanitizePrice(cand.Price, nil) <= 0 {
			rejected["bad_price"]++
			continue
		}

		gate := PassesGates(listing.Fingerprint, cand.Fingerprint)
		if !gate.Pass {
			rejected[gate.Reason]++
			continue
		}

		s := Score(listing.Fingerprint, cand.Fingerprint)
		if s.Value < cfg.MinCompScore {
			rejected["low_score"]++
			continue
		}
		scored = append(scored, model.ScoredComp{Listing: cand, Score: s.Value, Breakdown: s.Breakdown})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	comps := Dedupe(scored, cfg.DedupeThreshold)
	if dropped := len(scored) - len(comps); dropped > 0 {
		rejected["duplicate"] += dropped
	}
	if cfg.MaxComps > 0 && len(comps) > cfg.MaxComps {
		comps = comps[:cfg.MaxComps]
	}
	return comps, rejected
}

func isSelf(listing, cand model.Listing) bool {
	if listing.ID != "" && listing.ID == cand.ID {
		return true
	}
	return listing.URL != "" && listing.URL == cand.URL
}
