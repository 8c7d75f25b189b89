// Package fingerprint turns free-text listing titles into structured card
// identities.
package fingerprint

import (
	"regexp"
	"sort"
	"strings"

	"github.com/guarzo/cardsnipe/internal/model"
)

// Phrases that contain a junk or college keyword but name a real parallel.
var maskedPhrases = []string{"fast break"}

var junkPattern = regexp.MustCompile(`\b(lot|lots|break|breaks|repack|repacks|mystery|mystery box|mystery pack|custom|customs|reprint|reprints|rp|facsimile|proxy|novelty|fan made|art card|digital|bulk|team set|pick your|you pick|u pick|pyc|choose your|sticker|poster)\b`)

var collegePattern = regexp.MustCompile(`\b(college|collegiate|ncaa|university|draft picks|draft pick|bowman u|bowman university|chrome u|contenders draft|high school|g league ignite|overtime elite|duke|blue devils|kentucky|wildcats|unc|tar heels|north carolina|gonzaga|kansas|jayhawks|ucla|usc|uconn|villanova|baylor|ohio state|michigan state|iowa|hawkeyes|lsu|alabama|auburn|arkansas|longhorns|tennessee vols)\b`)

var draftPattern = regexp.MustCompile(`\bdraft\b`)

type setKeyword struct {
	pattern *regexp.Regexp
	set     model.CardSet
}

// Checked in order; Select and Optic cards carry "prizm" parallels, so the
// narrower brands go first.
var setKeywords = []setKeyword{
	{regexp.MustCompile(`\bnational treasures\b`), model.SetNationalTreasures},
	{regexp.MustCompile(`\boptic\b`), model.SetOptic},
	{regexp.MustCompile(`\bselect\b`), model.SetSelect},
	{regexp.MustCompile(`\bprizms?\b`), model.SetPrizm},
}

var (
	yearPattern       = regexp.MustCompile(`\b(20\d{2})\b`)
	hashNumberPattern = regexp.MustCompile(`#\s*(\d+)(\s*/\s*\d+)?`)
	noNumberPattern   = regexp.MustCompile(`\bno\.?\s*(\d+)\b`)
	serialPattern     = regexp.MustCompile(`out of\s*(\d+)|/\s*(\d+)`)
	seasonYearSuffix  = regexp.MustCompile(`\d{4}$`)
)

var parallels = map[string]string{
	"silver prizm": "SILVER", "prizm silver": "SILVER", "silver prizms": "SILVER", "silver": "SILVER",
	"hyper prizm": "HYPER", "hyper": "HYPER",
	"red white blue": "RED_WHITE_BLUE", "red white and blue": "RED_WHITE_BLUE", "rwb": "RED_WHITE_BLUE",
	"blue ice": "BLUE_ICE", "red ice": "RED_ICE", "purple ice": "PURPLE_ICE", "cracked ice": "CRACKED_ICE", "ice": "ICE",
	"tiger stripe": "TIGER", "tiger": "TIGER",
	"zebra": "ZEBRA", "snakeskin": "SNAKESKIN", "snake skin": "SNAKESKIN",
	"tie dye": "TIE_DYE", "tie-dye": "TIE_DYE",
	"dragon scale": "DRAGON_SCALE", "disco": "DISCO", "mojo": "MOJO", "shimmer": "SHIMMER",
	"blue wave": "BLUE_WAVE", "red wave": "RED_WAVE", "wave": "WAVE",
	"camo": "CAMO", "scope": "SCOPE", "green pulsar": "GREEN_PULSAR", "pulsar": "PULSAR",
	"white sparkle": "WHITE_SPARKLE", "fast break": "FAST_BREAK", "choice": "CHOICE",
	"gold vinyl": "GOLD_VINYL", "black gold": "BLACK_GOLD", "gold": "GOLD", "black": "BLACK",
	"neon green": "NEON_GREEN", "green": "GREEN", "blue": "BLUE", "red": "RED",
	"orange": "ORANGE", "purple": "PURPLE", "pink": "PINK", "holo": "HOLO",
}

type parallelKey struct {
	pattern *regexp.Regexp
	token   string
}

// parallelKeys is ordered longest key first so multi-word parallels are not
// shadowed by the single colors they contain.
var parallelKeys = buildParallelKeys()

func buildParallelKeys() []parallelKey {
	keys := make([]string, 0, len(parallels))
	for k := range parallels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	out := make([]parallelKey, len(keys))
	for i, k := range keys {
		out[i] = parallelKey{
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
			token:   parallels[k],
		}
	}
	return out
}

var (
	gradingPattern = regexp.MustCompile(`\b(psa|bgs|beckett|sgc|cgc|graded|slab|slabbed)\b`)
	graderPattern  = regexp.MustCompile(`\b(psa|bgs|beckett|sgc|cgc)\b`)
	gradeAfter     = regexp.MustCompile(`\b(?:psa|bgs|beckett|sgc|cgc|graded)\b[^0-9]{0,12}(10|9\.5|9|8\.5|8|7\.5|7)\b`)
	gradeBefore    = regexp.MustCompile(`\b(10|9\.5|9|8\.5|8|7\.5|7)\s*(?:psa|bgs|beckett|sgc|cgc)\b`)
)

var graders = map[string]model.Grader{
	"psa":     model.GraderPSA,
	"bgs":     model.GraderBGS,
	"beckett": model.GraderBGS,
	"sgc":     model.GraderSGC,
	"cgc":     model.GraderCGC,
}

var (
	rookiePattern = regexp.MustCompile(`\b(rookie|rookies|rc|rpa)\b`)
	autoPattern   = regexp.MustCompile(`\b(auto|autos|autograph|autographs|autographed|signed|rpa)\b`)
	patchPattern  = regexp.MustCompile(`\b(patch|patches|jersey|relic|relics|memorabilia|rpa)\b`)
)

// Parser extracts fingerprints. It is safe for concurrent use.
type Parser struct {
	resolver *Resolver
}

// NewParser returns a parser that resolves players against resolver.
// A nil resolver leaves Player unset.
func NewParser(resolver *Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// Parse builds the fingerprint of a title. It never fails: anything the
// title does not say is left nil or false. Junk and college titles stop
// extraction immediately.
func (p *Parser) Parse(title string) model.Fingerprint {
	lower := strings.ToLower(title)
	masked := lower
	for _, phrase := range maskedPhrases {
		masked = strings.ReplaceAll(masked, phrase, " ")
	}

	if junkPattern.MatchString(masked) {
		return model.Fingerprint{IsJunk: true}
	}
	if collegePattern.MatchString(masked) {
		return model.Fingerprint{IsCollege: true}
	}

	var fp model.Fingerprint
	for _, kw := range setKeywords {
		if !kw.pattern.MatchString(lower) {
			continue
		}
		if draftPattern.MatchString(lower) {
			return model.Fingerprint{IsCollege: true}
		}
		set := kw.set
		fp.Set = &set
		break
	}

	if p.resolver != nil {
		fp.Player = p.resolver.Resolve(title)
	}

	if m := yearPattern.FindStringSubmatch(lower); m != nil {
		fp.Year = strPtr(m[1])
	}
	fp.CardNumber = cardNumber(lower)
	fp.SerialDenominator = serialDenominator(lower)
	if fp.Player != nil {
		fp.Parallel = parallel(withoutName(lower, *fp.Player))
	} else {
		fp.Parallel = parallel(lower)
	}

	if gradingPattern.MatchString(lower) {
		fp.IsGraded = true
		if m := graderPattern.FindStringSubmatch(lower); m != nil {
			g := graders[m[1]]
			fp.Grader = &g
		}
		fp.Grade = grade(lower)
	}

	fp.IsRookie = rookiePattern.MatchString(lower)
	fp.IsAutograph = autoPattern.MatchString(lower)
	fp.IsPatch = patchPattern.MatchString(lower)
	fp.NormalizedTitle = NormalizeTitle(title)

	return fp
}

// cardNumber takes the first "#123" that is not a serial like "#15/99",
// falling back to "No. 123".
func cardNumber(lower string) *string {
	for _, m := range hashNumberPattern.FindAllStringSubmatch(lower, -1) {
		if m[2] == "" {
			return strPtr(m[1])
		}
	}
	if m := noNumberPattern.FindStringSubmatch(lower); m != nil {
		return strPtr(m[1])
	}
	return nil
}

// serialDenominator reads "/99", "##/10" or "out of 25". A season such as
// "2023/24" (four digits, slash, two digits, no spaces) is skipped.
func serialDenominator(lower string) *string {
	for _, idx := range serialPattern.FindAllStringSubmatchIndex(lower, -1) {
		if idx[2] >= 0 {
			return strPtr(lower[idx[2]:idx[3]])
		}
		if isSeason(lower, idx[0], idx[4], idx[5]) {
			continue
		}
		return strPtr(lower[idx[4]:idx[5]])
	}
	return nil
}

func isSeason(lower string, slash, start, end int) bool {
	return start == slash+1 && end-start == 2 && seasonYearSuffix.MatchString(lower[:slash])
}

// withoutName blanks the first mention of each word of the player's name so
// surnames like Green or Gold are not read as parallels.
func withoutName(lower, name string) string {
	for _, tok := range strings.Fields(Fold(name)) {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
		if loc := re.FindStringIndex(lower); loc != nil {
			lower = lower[:loc[0]] + " " + lower[loc[1]:]
		}
	}
	return lower
}

func parallel(lower string) *string {
	for _, k := range parallelKeys {
		if k.pattern.MatchString(lower) {
			return strPtr(k.token)
		}
	}
	return nil
}

func grade(lower string) *string {
	if m := gradeAfter.FindStringSubmatch(lower); m != nil {
		return strPtr(m[1])
	}
	if m := gradeBefore.FindStringSubmatch(lower); m != nil {
		return strPtr(m[1])
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
