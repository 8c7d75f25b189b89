package scanner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guarzo/cardsnipe/internal/cache"
	"github.com/guarzo/cardsnipe/internal/ebay"
	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/roster"
)

type fakeSearcher struct {
	mu      sync.Mutex
	fn      func(ctx context.Context, q ebay.Query) ([]model.Listing, error)
	queries []ebay.Query
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, q ebay.Query) ([]model.Listing, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	return f.fn(ctx, q)
}

func (f *fakeSearcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// byPlayer answers each live query with the listings registered for the
// player the query names.
func byPlayer(results map[string][]model.Listing) *fakeSearcher {
	return &fakeSearcher{fn: func(_ context.Context, q ebay.Query) ([]model.Listing, error) {
		for name, listings := range results {
			if strings.HasPrefix(q.Keywords, name) {
				return listings, nil
			}
		}
		return nil, nil
	}}
}

func listing(id, title string, price float64) model.Listing {
	return model.Listing{ID: id, Title: title, Price: price, URL: "https://www.ebay.test/itm/" + id}
}

// soldPool returns five close comparables for title, each with a distinct
// trailing word so none are deduped.
func soldPool(prefix, title string, prices ...float64) []model.Listing {
	words := []string{"sharp", "clean", "centered", "crisp", "pristine", "fresh", "gem"}
	pool := make([]model.Listing, len(prices))
	for i, p := range prices {
		pool[i] = listing(prefix+words[i], title+" "+words[i], p)
	}
	return pool
}

const wembyTitle = "2023 Panini Prizm Victor Wembanyama #136 Silver RC"

func newScanner(t *testing.T, live, comps ebay.Searcher, store cache.Store) *Scanner {
	t.Helper()
	s, err := New(DefaultConfig(), Deps{
		Live:   live,
		Comps:  comps,
		Parser: fingerprint.NewParser(fingerprint.NewResolver(roster.Default())),
		Cache:  store,
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	return s
}

func wemby() []roster.Player {
	players, _ := roster.Select(roster.Default(), []string{"Victor Wembanyama"})
	return players
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(DefaultConfig(), Deps{})
	assert.Error(t, err)

	_, err = New(DefaultConfig(), Deps{Live: byPlayer(nil), Comps: byPlayer(nil)})
	assert.Error(t, err)
}

func TestScan_FindsDealsAndCountsSkips(t *testing.T) {
	live := byPlayer(map[string][]model.Listing{
		"Victor Wembanyama": {
			listing("live-1", wembyTitle, 60),
			listing("live-2", wembyTitle+" nice", 140),
			listing("junk", "Lot of 5 Victor Wembanyama Prizm", 50),
			listing("college", "Victor Wembanyama Prizm Draft Picks", 50),
			listing("other", "2023 Panini Prizm Chet Holmgren #1 Silver", 50),
			listing("pricey", "2023 Panini Prizm Victor Wembanyama #136 Gold", 300),
			listing("noset", "2023 Donruss Victor Wembanyama Rated Rookie #241", 50),
			listing("joke", wembyTitle, 69420),
		},
	})
	comps := &fakeSearcher{fn: func(_ context.Context, q ebay.Query) ([]model.Listing, error) {
		return soldPool("sold-", wembyTitle, 95, 98, 100, 102, 105), nil
	}}

	result, err := newScanner(t, live, comps, nil).Scan(context.Background(), wemby())
	require.NoError(t, err)

	require.Len(t, result.Deals, 1)
	deal := result.Deals[0]
	assert.Equal(t, "live-1", deal.Listing.ID)
	assert.Equal(t, "Victor Wembanyama", deal.Listing.Player)
	assert.Equal(t, 100.0, deal.ReferencePrice)
	assert.Equal(t, 40.0, deal.PercentUnder)
	assert.Equal(t, model.ConfidenceHigh, deal.Confidence)
	assert.Equal(t, 5, deal.CompsUsed)
	assert.Len(t, deal.TopComps, 3)

	stats := result.Stats
	assert.Equal(t, 1, stats.PlayersScanned)
	assert.Equal(t, 8, stats.ListingsSeen)
	assert.Equal(t, 2, stats.ListingsChecked)
	assert.Equal(t, 1, stats.CompSearches)
	assert.Equal(t, 1, stats.CompCacheHits, "second listing of the same card reuses the pool")
	assert.Equal(t, 1, stats.Deals)
	assert.Equal(t, 1, stats.Rejected[SkipJunk])
	assert.Equal(t, 1, stats.Rejected[SkipCollege])
	assert.Equal(t, 1, stats.Rejected[SkipPlayerMismatch])
	assert.Equal(t, 1, stats.Rejected[SkipPriceRange])
	assert.Equal(t, 1, stats.Rejected[SkipNoSet])
	assert.Equal(t, 1, stats.Rejected[SkipBadPrice])

	assert.NotEmpty(t, result.ID)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	require.Equal(t, 1, comps.calls())
	assert.Contains(t, comps.queries[0].Keywords, "Victor Wembanyama prizm 2023 136")
}

func TestScan_DealsSortedByPercentUnder(t *testing.T) {
	chetTitle := "2022 Panini Prizm Chet Holmgren #249 Silver RC"
	live := byPlayer(map[string][]model.Listing{
		"Victor Wembanyama": {listing("w", wembyTitle, 85)},
		"Chet Holmgren":     {listing("c", chetTitle, 50)},
	})
	comps := &fakeSearcher{fn: func(_ context.Context, q ebay.Query) ([]model.Listing, error) {
		if strings.HasPrefix(q.Keywords, "Chet") {
			return soldPool("chet-", chetTitle, 95, 98, 100, 102, 105), nil
		}
		return soldPool("wemby-", wembyTitle, 95, 98, 100, 102, 105), nil
	}}

	players, err := roster.Select(roster.Default(), []string{"Victor Wembanyama", "Chet Holmgren"})
	require.NoError(t, err)

	result, err := newScanner(t, live, comps, nil).Scan(context.Background(), players)
	require.NoError(t, err)
	require.Len(t, result.Deals, 2)
	assert.Equal(t, "c", result.Deals[0].Listing.ID)
	assert.Equal(t, 50.0, result.Deals[0].PercentUnder)
	assert.Equal(t, "w", result.Deals[1].Listing.ID)
	assert.Equal(t, 15.0, result.Deals[1].PercentUnder)
}

func TestScan_SkipsPlayerWhenSearchFails(t *testing.T) {
	live := &fakeSearcher{fn: func(_ context.Context, q ebay.Query) ([]model.Listing, error) {
		if strings.HasPrefix(q.Keywords, "Victor") {
			return nil, ebay.ErrRateLimited
		}
		return nil, nil
	}}
	comps := byPlayer(nil)

	players, err := roster.Select(roster.Default(), []string{"Victor Wembanyama", "Chet Holmgren"})
	require.NoError(t, err)

	result, err := newScanner(t, live, comps, nil).Scan(context.Background(), players)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.PlayersFailed)
	assert.Equal(t, 1, result.Stats.PlayersScanned)
	assert.Equal(t, 2, live.calls())
}

func TestScan_SkipsListingWhenCompSearchFails(t *testing.T) {
	live := byPlayer(map[string][]model.Listing{
		"Victor Wembanyama": {listing("live-1", wembyTitle, 60)},
	})
	comps := &fakeSearcher{fn: func(context.Context, ebay.Query) ([]model.Listing, error) {
		return nil, errors.New("upstream down")
	}}

	result, err := newScanner(t, live, comps, nil).Scan(context.Background(), wemby())
	require.NoError(t, err)
	assert.Empty(t, result.Deals)
	assert.Equal(t, 1, result.Stats.CompSearchFails)
	assert.Equal(t, 1, result.Stats.Rejected[SkipCompSearch])
	assert.Equal(t, 0, result.Stats.ListingsChecked)
}

func TestScan_NotEnoughComps(t *testing.T) {
	live := byPlayer(map[string][]model.Listing{
		"Victor Wembanyama": {listing("live-1", wembyTitle, 20)},
	})
	comps := &fakeSearcher{fn: func(context.Context, ebay.Query) ([]model.Listing, error) {
		return soldPool("sold-", wembyTitle, 95, 100), nil
	}}

	s := newScanner(t, live, comps, nil)
	s.cfg.MinPrice = 0

	result, err := s.Scan(context.Background(), wemby())
	require.NoError(t, err)
	assert.Empty(t, result.Deals)
	assert.Equal(t, 1, result.Stats.ListingsChecked)
}

func TestScan_ClearsCacheAtStart(t *testing.T) {
	store, err := cache.NewMemory("", 0)
	require.NoError(t, err)
	key := cache.CompsKey("Victor Wembanyama", "PRIZM", "2023", "136")
	require.NoError(t, store.Put(context.Background(), key, soldPool("stale-", wembyTitle, 1000, 1000, 1000)))

	live := byPlayer(map[string][]model.Listing{
		"Victor Wembanyama": {listing("live-1", wembyTitle, 60)},
	})
	comps := &fakeSearcher{fn: func(context.Context, ebay.Query) ([]model.Listing, error) {
		return soldPool("sold-", wembyTitle, 95, 98, 100, 102, 105), nil
	}}

	result, err := newScanner(t, live, comps, store).Scan(context.Background(), wemby())
	require.NoError(t, err)
	assert.Equal(t, 1, comps.calls())
	assert.Equal(t, 0, result.Stats.CompCacheHits)
	require.Len(t, result.Deals, 1)
	assert.Equal(t, 100.0, result.Deals[0].ReferencePrice)

	var cached []model.Listing
	hit, err := store.Get(context.Background(), key, &cached)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, cached, 5)
}

func TestScan_ReportsProgress(t *testing.T) {
	var seen []string
	s, err := New(DefaultConfig(), Deps{
		Live:   byPlayer(nil),
		Comps:  byPlayer(nil),
		Parser: fingerprint.NewParser(fingerprint.NewResolver(roster.Default())),
		Logger: zerolog.Nop(),
		Progress: func(index, total int, player string) {
			assert.Equal(t, 2, total)
			seen = append(seen, player)
		},
	})
	require.NoError(t, err)

	players, err := roster.Select(roster.Default(), []string{"Chet Holmgren", "Victor Wembanyama"})
	require.NoError(t, err)

	_, err = s.Scan(context.Background(), players)
	require.NoError(t, err)
	assert.Equal(t, []string{"Victor Wembanyama", "Chet Holmgren"}, seen)
}

func TestScan_CancelledReturnsPartialResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	live := &fakeSearcher{fn: func(ctx context.Context, q ebay.Query) ([]model.Listing, error) {
		if strings.HasPrefix(q.Keywords, "Victor") {
			return nil, nil
		}
		cancel()
		return nil, ctx.Err()
	}}

	players, err := roster.Select(roster.Default(), []string{"Victor Wembanyama", "Chet Holmgren", "Paolo Banchero"})
	require.NoError(t, err)

	result, err := newScanner(t, live, byPlayer(nil), nil).Scan(ctx, players)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Stats.PlayersScanned)
	assert.Equal(t, 0, result.Stats.PlayersFailed)
	assert.Equal(t, 2, live.calls(), "no search after cancellation")
}

func TestScan_OneAtATime(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	live := &fakeSearcher{fn: func(context.Context, ebay.Query) ([]model.Listing, error) {
		close(started)
		<-release
		return nil, nil
	}}
	s := newScanner(t, live, byPlayer(nil), nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.Scan(context.Background(), wemby())
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("scan did not start")
	}
	assert.True(t, s.Running())

	_, err := s.Scan(context.Background(), wemby())
	assert.ErrorIs(t, err, ErrScanInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Running())
}

func TestInvalid(t *testing.T) {
	s := newScanner(t, byPlayer(nil), byPlayer(nil), nil)
	parser := fingerprint.NewParser(fingerprint.NewResolver(roster.Default()))
	player := wemby()[0]

	tests := []struct {
		title string
		price float64
		want  string
	}{
		{wembyTitle, 60, ""},
		{wembyTitle, 39.99, SkipPriceRange},
		{wembyTitle, 150.01, SkipPriceRange},
		{"Wembanyama Prizm Custom Card", 60, SkipJunk},
		{"2023 Panini Prizm #136 Silver", 60, SkipNoPlayer},
	}

	for _, tt := range tests {
		l := listing("x", tt.title, tt.price)
		l.Fingerprint = parser.Parse(tt.title)
		if got := s.invalid(l, player); got != tt.want {
			t.Errorf("invalid(%q, %v) = %q, want %q", tt.title, tt.price, got, tt.want)
		}
	}
}
