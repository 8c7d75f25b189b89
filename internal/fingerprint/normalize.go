package fingerprint

import (
	"strings"
	"unicode"
)

// stopwords carry no identity information and only dilute similarity.
var stopwords = map[string]bool{
	"panini": true, "card": true, "cards": true, "rare": true, "hot": true,
	"nba": true, "wnba": true, "nfl": true, "mlb": true,
	"basketball": true, "football": true, "baseball": true,
	"the": true, "and": true, "of": true, "a": true, "with": true, "for": true,
	"new": true, "invest": true, "investment": true, "look": true, "wow": true,
	"read": true, "description": true, "mint": true,
}

// Fold lowercases s and turns every run of non-alphanumeric characters
// into a single space.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeTitle folds a title and drops stopwords. The result is only
// meant for free-text similarity.
func NormalizeTitle(title string) string {
	words := strings.Fields(Fold(title))
	kept := words[:0]
	for _, w := range words {
		if !stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// WordSet splits a normalized title into its distinct words.
func WordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

// Jaccard is |A∩B| / |A∪B| over the word sets of two normalized titles.
// Two empty titles have similarity 0.
func Jaccard(a, b string) float64 {
	setA := WordSet(a)
	setB := WordSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	inter := 0
	for w := range setA {
		if _, ok := setB[w]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
