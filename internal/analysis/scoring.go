package analysis

import (
	"fmt"
	"math"
	"strconv"

	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/model"
)

// Score weights.
const (
	pointsCardNumber   = 25
	pointsSerial       = 25
	pointsParallel     = 20
	pointsSimilarity   = 20
	pointsFlag         = 10
	penaltySSPMismatch = 40

	// sspMaxSerial is the largest print run treated as a super short print.
	sspMaxSerial = 25
)

// ScoreResult is a match score and the terms that produced it.
type ScoreResult struct {
	Value     int      `json:"value"`
	Breakdown []string `json:"breakdown"`
}

// Score ranks how closely a gate-passing candidate matches the live card.
// It is symmetric in its arguments.
func Score(live, cand model.Fingerprint) ScoreResult {
	var r ScoreResult
	add := func(term string, points int) {
		r.Value += points
		r.Breakdown = append(r.Breakdown, fmt.Sprintf("%s %+d", term, points))
	}

	if bothSet(live.CardNumber, cand.CardNumber) {
		add("card_number", pointsCardNumber)
	}
	if bothSet(live.SerialDenominator, cand.SerialDenominator) {
		add("serial", pointsSerial)
	}
	if bothSet(live.Parallel, cand.Parallel) {
		add("parallel", pointsParallel)
	}

	sim := fingerprint.Jaccard(live.NormalizedTitle, cand.NormalizedTitle)
	if pts := int(math.Round(sim * pointsSimilarity)); pts > 0 {
		add("title_similarity", pts)
	}

	if live.IsRookie && cand.IsRookie {
		add("rookie", pointsFlag)
	}
	if live.IsAutograph && cand.IsAutograph {
		add("autograph", pointsFlag)
	}
	if live.IsPatch && cand.IsPatch {
		add("patch", pointsFlag)
	}

	if isSSP(live) != isSSP(cand) {
		add("ssp_mismatch", -penaltySSPMismatch)
	}
	return r
}

// isSSP reports whether the card is numbered to sspMaxSerial or fewer.
func isSSP(fp model.Fingerprint) bool {
	if fp.SerialDenominator == nil {
		return false
	}
	n, err := strconv.Atoi(*fp.SerialDenominator)
	return err == nil && n > 0 && n <= sspMaxSerial
}
