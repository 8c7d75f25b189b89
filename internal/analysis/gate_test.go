package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/testutil"
)

func wemby() testutil.Card {
	return testutil.Card{
		Player:   "Victor Wembanyama",
		Year:     "2023",
		Set:      model.SetPrizm,
		Parallel: "SILVER",
		Number:   "136",
		Rookie:   true,
		Title:    "2023 prizm victor wembanyama silver 136",
	}
}

func TestPassesGates_Identical(t *testing.T) {
	fp := wemby().Fingerprint()
	assert.Equal(t, GateResult{Pass: true}, PassesGates(fp, fp))
}

func TestPassesGates_Reasons(t *testing.T) {
	live := wemby().Fingerprint()

	other := func(mut func(*testutil.Card)) model.Fingerprint {
		c := wemby()
		mut(&c)
		return c.Fingerprint()
	}

	tests := []struct {
		name string
		cand model.Fingerprint
		want string
	}{
		{"junk", model.Fingerprint{IsJunk: true}, ReasonJunk},
		{"college", model.Fingerprint{IsCollege: true}, ReasonCollege},
		{"other player", other(func(c *testutil.Card) { c.Player = "Chet Holmgren" }), ReasonPlayerMismatch},
		{"unresolved player", other(func(c *testutil.Card) { c.Player = "" }), ReasonPlayerMismatch},
		{"other year", other(func(c *testutil.Card) { c.Year = "2024" }), ReasonYearMismatch},
		{"missing year", other(func(c *testutil.Card) { c.Year = "" }), ReasonYearMismatch},
		{"other set", other(func(c *testutil.Card) { c.Set = model.SetSelect }), ReasonSetMismatch},
		{"graded", other(func(c *testutil.Card) { c.Graded = true }), ReasonGradedMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PassesGates(live, tt.cand)
			assert.False(t, got.Pass)
			assert.Equal(t, tt.want, got.Reason)
		})
	}
}

func TestPassesGates_SoftFieldsDoNotGate(t *testing.T) {
	live := wemby().Fingerprint()
	c := wemby()
	c.Parallel = "GOLD"
	c.Number = "1"
	c.Serial = "10"
	c.Rookie = false

	assert.True(t, PassesGates(live, c.Fingerprint()).Pass)
}

func TestPassesGates_GradedOnlyDifference(t *testing.T) {
	// A raw card and the same card flagged graded with no other difference.
	raw := wemby()
	graded := wemby()
	graded.Graded = true

	for _, pair := range [][2]model.Fingerprint{
		{raw.Fingerprint(), graded.Fingerprint()},
		{graded.Fingerprint(), raw.Fingerprint()},
	} {
		got := PassesGates(pair[0], pair[1])
		assert.False(t, got.Pass)
		assert.Equal(t, ReasonGradedMismatch, got.Reason)
	}
}

func TestPassesGates_GraderAndGrade(t *testing.T) {
	psa10 := wemby()
	psa10.Grader, psa10.Grade = model.GraderPSA, "10"

	bgs10 := psa10
	bgs10.Grader = model.GraderBGS

	psa9 := psa10
	psa9.Grade = "9"

	assert.True(t, PassesGates(psa10.Fingerprint(), psa10.Fingerprint()).Pass)
	assert.Equal(t, ReasonGraderMismatch, PassesGates(psa10.Fingerprint(), bgs10.Fingerprint()).Reason)
	assert.Equal(t, ReasonGradeMismatch, PassesGates(psa10.Fingerprint(), psa9.Fingerprint()).Reason)
}

func TestPassesGates_Symmetric(t *testing.T) {
	var fps []model.Fingerprint
	for _, mut := range []func(*testutil.Card){
		func(c *testutil.Card) {},
		func(c *testutil.Card) { c.Player = "Chet Holmgren" },
		func(c *testutil.Card) { c.Year = "2022" },
		func(c *testutil.Card) { c.Year = "" },
		func(c *testutil.Card) { c.Set = model.SetOptic },
		func(c *testutil.Card) { c.Graded = true },
		func(c *testutil.Card) { c.Grader, c.Grade = model.GraderPSA, "10" },
		func(c *testutil.Card) { c.Grader, c.Grade = model.GraderPSA, "9" },
		func(c *testutil.Card) { c.Grader, c.Grade = model.GraderSGC, "10" },
		func(c *testutil.Card) { c.Parallel = "" },
	} {
		c := wemby()
		mut(&c)
		fps = append(fps, c.Fingerprint())
	}
	fps = append(fps, model.Fingerprint{IsJunk: true}, model.Fingerprint{IsCollege: true})

	for i, a := range fps {
		for j, b := range fps {
			assert.Equal(t, PassesGates(a, b), PassesGates(b, a), "pair %d/%d", i, j)
		}
	}
}
