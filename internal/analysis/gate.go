package analysis

import "github.com/guarzo/cardsnipe/internal/model"

// Gate rejection reasons. They are diagnostic only.
const (
	ReasonJunk           = "junk"
	ReasonCollege        = "college"
	ReasonPlayerMismatch = "player_mismatch"
	ReasonYearMismatch   = "year_mismatch"
	ReasonSetMismatch    = "set_mismatch"
	ReasonGradedMismatch = "graded_mismatch"
	ReasonGraderMismatch = "grader_mismatch"
	ReasonGradeMismatch  = "grade_mismatch"
)

// GateResult is the outcome of PassesGates. Reason is empty on a pass.
type GateResult struct {
	Pass   bool   `json:"pass"`
	Reason string `json:"reason,omitempty"`
}

// PassesGates applies the hard-equality rules a candidate must meet before
// it can be scored against a live listing. The first failing rule wins.
// Every rule is symmetric in its two arguments.
func PassesGates(live, cand model.Fingerprint) GateResult {
	switch {
	case live.IsJunk || cand.IsJunk:
		return fail(ReasonJunk)
	case live.IsCollege || cand.IsCollege:
		return fail(ReasonCollege)
	case live.Player == nil || cand.Player == nil || *live.Player != *cand.Player:
		return fail(ReasonPlayerMismatch)
	case !equalPtr(live.Year, cand.Year):
		return fail(ReasonYearMismatch)
	case !equalPtr(live.Set, cand.Set):
		return fail(ReasonSetMismatch)
	case live.IsGraded != cand.IsGraded:
		return fail(ReasonGradedMismatch)
	}

	if live.IsGraded {
		if !equalPtr(live.Grader, cand.Grader) {
			return fail(ReasonGraderMismatch)
		}
		if !equalPtr(live.Grade, cand.Grade) {
			return fail(ReasonGradeMismatch)
		}
	}
	return GateResult{Pass: true}
}

func fail(reason string) GateResult {
	return GateResult{Reason: reason}
}

// equalPtr treats two nils as equal and a nil against a value as different.
func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// bothSet reports whether a and b are present and equal.
func bothSet[T comparable](a, b *T) bool {
	return a != nil && b != nil && *a == *b
}
