package analysis

// Config holds the matching and pricing parameters. None of them are
// derived constants; they are business knobs.
type Config struct {
	MinCompScore     int     // comps scoring below this are discarded
	DedupeThreshold  float64 // titles more similar than this are the same listing
	MaxComps         int     // comp set size after dedupe
	MinComps         int     // fewer comps than this yields no reference price
	FloorSampleSize  int     // number of cheapest comps the reference price is drawn from
	TrimMinSample    int     // sample size at which both tails are trimmed
	TrimFraction     float64 // fraction trimmed from each tail
	HighConfidenceCV float64 // coefficient of variation below which confidence is high
	DealThreshold    float64 // maximum listing/reference ratio for a deal
	TopCompsShown    int     // comps attached to a deal for auditing
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinCompScore:     60,
		DedupeThreshold:  0.92,
		MaxComps:         10,
		MinComps:         3,
		FloorSampleSize:  10,
		TrimMinSample:    8,
		TrimFraction:     0.10,
		HighConfidenceCV: 0.18,
		DealThreshold:    0.90,
		TopCompsShown:    3,
	}
}
