package model

import "time"

// CardSet is one of the supported professional product lines.
type CardSet string

const (
	SetPrizm             CardSet = "PRIZM"
	SetSelect            CardSet = "SELECT"
	SetOptic             CardSet = "OPTIC"
	SetNationalTreasures CardSet = "NATIONAL_TREASURES"
)

// Grader is a third-party grading company.
type Grader string

const (
	GraderPSA Grader = "PSA"
	GraderBGS Grader = "BGS"
	GraderSGC Grader = "SGC"
	GraderCGC Grader = "CGC"
)

// Fingerprint is the structured identity extracted from a listing title.
// Optional attributes are nil when the title does not carry them.
// Once IsJunk or IsCollege is set nothing else is populated.
type Fingerprint struct {
	Player            *string  `json:"player"`
	Year              *string  `json:"year"`
	Set               *CardSet `json:"set"`
	Parallel          *string  `json:"parallel"`
	SerialDenominator *string  `json:"serialDenominator"`
	CardNumber        *string  `json:"cardNumber"`
	IsGraded          bool     `json:"isGraded"`
	Grader            *Grader  `json:"grader"`
	Grade             *string  `json:"grade"`
	IsRookie          bool     `json:"isRookie"`
	IsAutograph       bool     `json:"isAutograph"`
	IsPatch           bool     `json:"isPatch"`
	IsCollege         bool     `json:"isCollege"`
	IsJunk            bool     `json:"isJunk"`
	NormalizedTitle   string   `json:"normalizedTitle"`
}

// Live reports whether the fingerprint may stand for a live listing:
// resolved player, known set, and neither junk nor college.
func (f Fingerprint) Live() bool {
	return !f.IsJunk && !f.IsCollege && f.Set != nil && f.Player != nil
}

// Listing is one marketplace result. It is never mutated after creation.
type Listing struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Price       float64     `json:"price"`
	URL         string      `json:"url"`
	Player      string      `json:"player,omitempty"`
	Fingerprint Fingerprint `json:"fingerprint"`
	SeenAt      time.Time   `json:"timestamp"`
}

// ScoredComp is a gate-passing candidate comparable with its match score.
type ScoredComp struct {
	Listing   Listing  `json:"listing"`
	Score     int      `json:"score"`
	Breakdown []string `json:"breakdown,omitempty"`
}

// Confidence labels a reference price estimate.
type Confidence string

const (
	ConfidenceInsufficient Confidence = "insufficient"
	ConfidenceModerate     Confidence = "moderate"
	ConfidenceHigh         Confidence = "high"
)

// EstimateDetails records how a reference price was derived.
type EstimateDetails struct {
	CompCount  int       `json:"compCount"`
	SampleSize int       `json:"sampleSize"`
	Trimmed    int       `json:"trimmed"`
	Prices     []float64 `json:"prices,omitempty"`
	Mean       float64   `json:"mean"`
	StdDev     float64   `json:"stdDev"`
	CV         float64   `json:"cv"`
	Min        float64   `json:"min"`
	Max        float64   `json:"max"`
}

// Estimate is a reference price with its confidence. Price is nil when
// there was not enough evidence.
type Estimate struct {
	Price      *float64        `json:"price"`
	Confidence Confidence      `json:"confidence"`
	Details    EstimateDetails `json:"details"`
}

// CompSummary is an audit entry attached to a deal.
type CompSummary struct {
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Score int     `json:"score"`
	URL   string  `json:"url,omitempty"`
}

// Deal is a listing priced meaningfully below its reference price.
type Deal struct {
	Listing        Listing       `json:"listing"`
	ReferencePrice float64       `json:"referencePrice"`
	PercentUnder   float64       `json:"percentUnder"`
	Confidence     Confidence    `json:"confidence"`
	CompsUsed      int           `json:"compsUsed"`
	TopComps       []CompSummary `json:"topComps"`
}

// ScanStats counts what happened during a scan.
type ScanStats struct {
	PlayersScanned  int            `json:"playersScanned"`
	PlayersFailed   int            `json:"playersFailed"`
	ListingsSeen    int            `json:"listingsSeen"`
	ListingsChecked int            `json:"listingsChecked"`
	Rejected        map[string]int `json:"rejected"`
	CompSearches    int            `json:"compSearches"`
	CompCacheHits   int            `json:"compCacheHits"`
	CompSearchFails int            `json:"compSearchFailures"`
	Deals           int            `json:"deals"`
}

// ScanResult is everything a scan produced.
type ScanResult struct {
	ID         string    `json:"scanId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Deals      []Deal    `json:"deals"`
	Stats      ScanStats `json:"stats"`
}
