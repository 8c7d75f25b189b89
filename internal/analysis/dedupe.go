package analysis

import (
	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/model"
)

// Dedupe drops every comp whose normalized title is more similar than
// threshold to a comp already kept. Input order is preserved.
func Dedupe(comps []model.ScoredComp, threshold float64) []model.ScoredComp {
	kept := make([]model.ScoredComp, 0, len(comps))
	for _, c := range comps {
		dup := false
		for _, k := range kept {
			if fingerprint.Jaccard(c.Listing.Fingerprint.NormalizedTitle, k.Listing.Fingerprint.NormalizedTitle) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}
