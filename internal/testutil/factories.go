package testutil

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/guarzo/cardsnipe/internal/model"
)

// TestDataFactory provides methods for generating dynamic test data
type TestDataFactory struct {
	rand *rand.Rand
	seq  int
}

// NewTestDataFactory creates a new test data factory with a seeded random generator
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateItemID generates a marketplace-style item id
func (f *TestDataFactory) GenerateItemID() string {
	f.seq++
	return fmt.Sprintf("v1|%012d|0", 100000000000+f.rand.Int63n(899999999999)+int64(f.seq))
}

// GenerateTestURL generates a test URL for the given item id
func (f *TestDataFactory) GenerateTestURL(itemID string) string {
	return "https://www.ebay.test/itm/" + strings.ReplaceAll(itemID, "|", "-")
}

// GenerateCardNumber generates a random card number for testing
func (f *TestDataFactory) GenerateCardNumber() string {
	return fmt.Sprintf("%d", f.rand.Intn(300)+1)
}

// GenerateParallel generates a random parallel name as sellers write it
func (f *TestDataFactory) GenerateParallel() string {
	parallels := []string{"Silver", "Silver Prizm", "Red White Blue", "Hyper", "Blue Ice", "Tiger Stripe", "Mojo", "Green"}
	return parallels[f.rand.Intn(len(parallels))]
}

// GenerateYear generates a season year between 2019 and 2024
func (f *TestDataFactory) GenerateYear() string {
	return fmt.Sprintf("%d", 2019+f.rand.Intn(6))
}

// GeneratePrice generates a random price between $40 and $150
func (f *TestDataFactory) GeneratePrice() float64 {
	cents := 4000 + f.rand.Intn(11001)
	return float64(cents) / 100
}

// GenerateTitle generates a plausible raw Prizm listing title for player
func (f *TestDataFactory) GenerateTitle(player string) string {
	return fmt.Sprintf("%s Panini Prizm %s %s #%s RC",
		f.GenerateYear(), player, f.GenerateParallel(), f.GenerateCardNumber())
}

// GenerateListing generates an unparsed listing for player
func (f *TestDataFactory) GenerateListing(player string) model.Listing {
	id := f.GenerateItemID()
	return model.Listing{
		ID:     id,
		Title:  f.GenerateTitle(player),
		Price:  f.GeneratePrice(),
		URL:    f.GenerateTestURL(id),
		SeenAt: time.Now().AddDate(0, 0, -f.rand.Intn(30)),
	}
}

// Card describes a fingerprint in compact form. Empty strings mean absent.
type Card struct {
	Player   string
	Year     string
	Set      model.CardSet
	Parallel string
	Serial   string
	Number   string
	Grader   model.Grader
	Grade    string
	Graded   bool
	Rookie   bool
	Auto     bool
	Patch    bool
	Title    string // normalized title; defaults to one derived from the fields
}

// Fingerprint builds the fingerprint Card describes.
func (c Card) Fingerprint() model.Fingerprint {
	fp := model.Fingerprint{
		Player:            opt(c.Player),
		Year:              opt(c.Year),
		Parallel:          opt(c.Parallel),
		SerialDenominator: opt(c.Serial),
		CardNumber:        opt(c.Number),
		Grade:             opt(c.Grade),
		IsGraded:          c.Graded || c.Grader != "" || c.Grade != "",
		IsRookie:          c.Rookie,
		IsAutograph:       c.Auto,
		IsPatch:           c.Patch,
		NormalizedTitle:   c.Title,
	}
	if c.Set != "" {
		set := c.Set
		fp.Set = &set
	}
	if c.Grader != "" {
		g := c.Grader
		fp.Grader = &g
	}
	if fp.NormalizedTitle == "" {
		fp.NormalizedTitle = strings.ToLower(strings.Join(strings.Fields(strings.Join(
			[]string{c.Year, string(c.Set), c.Player, c.Parallel, c.Number}, " ")), " "))
	}
	return fp
}

// Listing wraps a fingerprint in a listing with a derived id and URL.
func Listing(id string, price float64, fp model.Fingerprint) model.Listing {
	l := model.Listing{
		ID:          id,
		Title:       fp.NormalizedTitle,
		Price:       price,
		URL:         "https://www.ebay.test/itm/" + id,
		Fingerprint: fp,
	}
	if fp.Player != nil {
		l.Player = *fp.Player
	}
	return l
}

// Pool builds one candidate listing per price, all sharing fp but with
// distinct titles so they survive dedupe.
func Pool(fp model.Fingerprint, prices ...float64) []model.Listing {
	pool := make([]model.Listing, len(prices))
	for i, p := range prices {
		c := fp
		c.NormalizedTitle = fmt.Sprintf("%s seller%d ref%d", fp.NormalizedTitle, i, i)
		pool[i] = Listing(fmt.Sprintf("comp-%d", i), p, c)
	}
	return pool
}

// Comps builds a ranked comp set with the given prices, each scoring score.
func Comps(fp model.Fingerprint, score int, prices ...float64) []model.ScoredComp {
	pool := Pool(fp, prices...)
	comps := make([]model.ScoredComp, len(pool))
	for i, l := range pool {
		comps[i] = model.ScoredComp{Listing: l, Score: score}
	}
	return comps
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
