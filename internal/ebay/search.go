// Package ebay finds live and sold card listings on eBay.
package ebay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guarzo/cardsnipe/internal/model"
)

var (
	// ErrNotConfigured is returned when credentials are missing.
	ErrNotConfigured = errors.New("ebay: client credentials not configured")
	// ErrRateLimited is returned when eBay answers 429 or a quota error.
	ErrRateLimited = errors.New("ebay: rate limit exceeded")
)

// Sports trading card singles.
const defaultCategoryID = "261328"

// Query is one marketplace search.
type Query struct {
	Keywords string
	MinPrice float64 // 0 means no lower bound
	MaxPrice float64 // 0 means no upper bound
	Limit    int
}

// Searcher runs a query against one listing source. Results carry id,
// title, price and URL; the fingerprint is left to the caller.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]model.Listing, error)
	Name() string
}

// setTerms are the words a set is searched by.
var setTerms = map[model.CardSet]string{
	model.SetPrizm:             "prizm",
	model.SetSelect:            "select",
	model.SetOptic:             "optic",
	model.SetNationalTreasures: "\"national treasures\"",
}

// LiveQuery searches a player's cards in any supported set.
func LiveQuery(player string, minPrice, maxPrice float64, limit int) Query {
	return Query{
		Keywords: fmt.Sprintf("%s (prizm,select,optic,\"national treasures\")", player),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Limit:    limit,
	}
}

// CompQuery searches candidate comparables for a live fingerprint: player,
// set, year and card number when known. Raw cards exclude grading terms;
// graded cards ask for the same grader and grade.
func CompQuery(fp model.Fingerprint, limit int) Query {
	var terms []string
	if fp.Player != nil {
		terms = append(terms, *fp.Player)
	}
	if fp.Set != nil {
		terms = append(terms, setTerms[*fp.Set])
	}
	if fp.Year != nil {
		terms = append(terms, *fp.Year)
	}
	if fp.CardNumber != nil {
		terms = append(terms, *fp.CardNumber)
	}

	switch {
	case !fp.IsGraded:
		terms = append(terms, "-psa", "-bgs", "-sgc", "-cgc")
	case fp.Grader != nil:
		terms = append(terms, string(*fp.Grader))
		if fp.Grade != nil {
			terms = append(terms, *fp.Grade)
		}
	}

	return Query{Keywords: strings.Join(terms, " "), Limit: limit}
}

// MultiSearcher concatenates the results of several searchers, keeping the
// first listing seen for each id. A source that fails is skipped unless
// every source fails.
type MultiSearcher struct {
	sources []Searcher
}

// NewMultiSearcher combines sources in order.
func NewMultiSearcher(sources ...Searcher) *MultiSearcher {
	return &MultiSearcher{sources: sources}
}

func (m *MultiSearcher) Name() string {
	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return strings.Join(names, "+")
}

func (m *MultiSearcher) Search(ctx context.Context, q Query) ([]model.Listing, error) {
	var (
		out  []model.Listing
		seen = make(map[string]bool)
		errs []error
	)
	for _, s := range m.sources {
		listings, err := s.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		for _, l := range listings {
			if l.ID != "" && seen[l.ID] {
				continue
			}
			seen[l.ID] = true
			out = append(out, l)
		}
	}
	if len(errs) > 0 && len(errs) == len(m.sources) {
		return nil, errors.Join(errs...)
	}
	return out, nil
}
