package fingerprint

import (
	"regexp"
	"strings"

	"github.com/guarzo/cardsnipe/internal/roster"
)

// minVariantLen is the shortest single-word variant allowed to match alone.
// Two-letter surname fragments produce too many false positives.
const minVariantLen = 3

type variant struct {
	tokens []string       // multi-word variants: all must be present
	word   *regexp.Regexp // single-word variants: whole-word match
}

type entry struct {
	name     string
	variants []variant
}

// Resolver maps fuzzy name mentions in titles to exactly one roster entry.
type Resolver struct {
	entries []entry
}

// NewResolver precomputes the name variants for every player. The roster
// order is kept: when two entries share a surname, the earlier one claims
// every title that mentions it.
func NewResolver(players []roster.Player) *Resolver {
	r := &Resolver{entries: make([]entry, 0, len(players))}
	for _, p := range players {
		e := entry{name: p.Name}
		seen := make(map[string]bool)
		for _, raw := range variantStrings(p) {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			if v, ok := buildVariant(raw); ok {
				e.variants = append(e.variants, v)
			}
		}
		r.entries = append(r.entries, e)
	}
	return r
}

// variantStrings lists the folded full name, the surname, and every alias.
func variantStrings(p roster.Player) []string {
	out := []string{Fold(p.Name)}
	if s := surname(p.Name); s != "" {
		out = append(out, s)
	}

	for _, a := range p.Aliases {
		if f := Fold(a); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// surname is the last part of a name with at least two parts longer than
// one character.
func surname(name string) string {
	var parts []string
	for _, part := range strings.Fields(Fold(name)) {
		if len(part) > 1 {
			parts = append(parts, part)
		}
	}
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-1]
}

func buildVariant(folded string) (variant, bool) {
	tokens := strings.Fields(folded)
	switch {
	case len(tokens) >= 2:
		return variant{tokens: tokens}, true
	case len(tokens) == 1 && len([]rune(tokens[0])) >= minVariantLen:
		return variant{word: regexp.MustCompile(`\b` + regexp.QuoteMeta(tokens[0]) + `\b`)}, true
	default:
		return variant{}, false
	}
}

func (v variant) matches(folded string, words map[string]struct{}) bool {
	if v.word != nil {
		return v.word.MatchString(folded)
	}
	for _, t := range v.tokens {
		if _, ok := words[t]; !ok {
			return false
		}
	}
	return true
}

// Resolve returns the canonical name of the first roster entry mentioned
// in title, or nil.
func (r *Resolver) Resolve(title string) *string {
	if r == nil {
		return nil
	}

	folded := Fold(title)
	words := WordSet(folded)
	for i := range r.entries {
		for _, v := range r.entries[i].variants {
			if v.matches(folded, words) {
				name := r.entries[i].name
				return &name
			}
		}
	}
	return nil
}
