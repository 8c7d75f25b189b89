// Package scanner runs deal scans: it searches each tracked player's live
// listings, prices every valid listing against its comparables and
// collects the deals.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/guarzo/cardsnipe/internal/analysis"
	"github.com/guarzo/cardsnipe/internal/cache"
	"github.com/guarzo/cardsnipe/internal/ebay"
	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/roster"
)

// ErrScanInProgress is returned when a scan is requested while another one
// is running.
var ErrScanInProgress = errors.New("scan already in progress")

// Reasons a live listing is not evaluated.
const (
	SkipJunk           = "junk"
	SkipCollege        = "college"
	SkipNoSet          = "no_set"
	SkipNoPlayer       = "no_player"
	SkipPlayerMismatch = "player_mismatch"
	SkipPriceRange     = "price_range"
	SkipBadPrice       = "bad_price"
	SkipCompSearch     = "comp_search_failed"
)

// Config holds scan parameters.
type Config struct {
	MinPrice    float64 // live listings below this are ignored
	MaxPrice    float64 // live listings above this are ignored; 0 means no cap
	SearchLimit int     // live listings requested per player
	CompLimit   int     // candidate comparables requested per listing
	Analysis    analysis.Config
}

// DefaultConfig returns the scan defaults.
func DefaultConfig() Config {
	return Config{
		MinPrice:    40,
		MaxPrice:    150,
		SearchLimit: 50,
		CompLimit:   100,
		Analysis:    analysis.DefaultConfig(),
	}
}

// ProgressFunc is called before each player is scanned. index is 1-based.
type ProgressFunc func(index, total int, player string)

// Deps are the collaborators a Scanner uses.
type Deps struct {
	Live     ebay.Searcher       // live listing source
	Comps    ebay.Searcher       // comparable candidate source
	Parser   *fingerprint.Parser // built from the full roster
	Cache    cache.Store         // optional; an in-memory store is used when nil
	Logger   zerolog.Logger
	Progress ProgressFunc // optional
}

// Scanner runs one scan at a time.
type Scanner struct {
	cfg      Config
	live     ebay.Searcher
	comps    ebay.Searcher
	parser   *fingerprint.Parser
	cache    cache.Store
	log      zerolog.Logger
	progress ProgressFunc
	running  atomic.Bool
	now      func() time.Time
}

// New creates a scanner.
func New(cfg Config, deps Deps) (*Scanner, error) {
	if deps.Live == nil || deps.Comps == nil {
		return nil, fmt.Errorf("scanner needs live and comparable searchers")
	}
	if deps.Parser == nil {
		return nil, fmt.Errorf("scanner needs a title parser")
	}
	store := deps.Cache
	if store == nil {
		mem, err := cache.NewMemory("", 0)
		if err != nil {
			return nil, fmt.Errorf("create comp cache: %w", err)
		}
		store = mem
	}
	return &Scanner{
		cfg:      cfg,
		live:     deps.Live,
		comps:    deps.Comps,
		parser:   deps.Parser,
		cache:    store,
		log:      deps.Logger.With().Str("component", "scanner").Logger(),
		progress: deps.Progress,
		now:      time.Now,
	}, nil
}

// Running reports whether a scan is in progress.
func (s *Scanner) Running() bool {
	return s.running.Load()
}

// Scan searches every player in order and returns the deals found, sorted
// by PercentUnder descending. A player whose listing search fails is
// skipped. If ctx is cancelled the partial result is returned together
// with ctx.Err().
func (s *Scanner) Scan(ctx context.Context, players []roster.Player) (*model.ScanResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.running.Store(false)

	result := &model.ScanResult{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		Deals:     []model.Deal{},
		Stats:     model.ScanStats{Rejected: make(map[string]int)},
	}
	log := s.log.With().Str("scan_id", result.ID).Logger()
	log.Info().Int("players", len(players)).Msg("scan started")

	// Pools from a previous scan may be stale.
	if err := s.cache.Clear(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clear comp cache")
	}

	var scanErr error
	for i, player := range players {
		if err := ctx.Err(); err != nil {
			scanErr = err
			break
		}
		if s.progress != nil {
			s.progress(i+1, len(players), player.Name)
		}
		if err := s.scanPlayer(ctx, log, player, result); err != nil {
			if ctx.Err() != nil {
				scanErr = ctx.Err()
				break
			}
			result.Stats.PlayersFailed++
			log.Error().Err(err).Str("player", player.Name).Msg("listing search failed, skipping player")
			continue
		}
		result.Stats.PlayersScanned++
	}

	sort.SliceStable(result.Deals, func(i, j int) bool {
		return result.Deals[i].PercentUnder > result.Deals[j].PercentUnder
	})
	result.Stats.Deals = len(result.Deals)
	result.FinishedAt = s.now()

	event := log.Info()
	if scanErr != nil {
		event = log.Warn().Err(scanErr)
	}
	event.
		Int("players_scanned", result.Stats.PlayersScanned).
		Int("listings_checked", result.Stats.ListingsChecked).
		Int("deals", result.Stats.Deals).
		Dur("duration", result.FinishedAt.Sub(result.StartedAt)).
		Msg("scan finished")

	return result, scanErr
}

func (s *Scanner) scanPlayer(ctx context.Context, log zerolog.Logger, player roster.Player, result *model.ScanResult) error {
	q := ebay.LiveQuery(player.Name, s.cfg.MinPrice, s.cfg.MaxPrice, s.cfg.SearchLimit)
	listings, err := s.live.Search(ctx, q)
	if err != nil {
		return err
	}
	log.Debug().Str("player", player.Name).Int("listings", len(listings)).Msg("live listings fetched")

	result.Stats.ListingsSeen += len(listings)
	clean := analysis.SanitizeListings(listings, nil)
	if dropped := len(listings) - len(clean); dropped > 0 {
		result.Stats.Rejected[SkipBadPrice] += dropped
	}

	for _, l := range clean {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.Fingerprint = s.parser.Parse(l.Title)
		l.Player = player.Name
		if reason := s.invalid(l, player); reason != "" {
			result.Stats.Rejected[reason]++
			log.Debug().Str("title", l.Title).Str("reason", reason).Msg("listing skipped")
			continue
		}

		pool, err := s.compPool(ctx, log, l.Fingerprint, &result.Stats)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			result.Stats.Rejected[SkipCompSearch]++
			log.Warn().Err(err).Str("title", l.Title).Msg("comparable search failed, skipping listing")
			continue
		}

		comps, rejected := analysis.Match(l, pool, s.cfg.Analysis)
		for reason, n := range rejected {
			result.Stats.Rejected["comp_"+reason] += n
		}
		result.Stats.ListingsChecked++

		est, deal := analysis.Appraise(l, comps, s.cfg.Analysis)
		if deal == nil {
			log.Debug().
				Str("title", l.Title).
				Int("comps", len(comps)).
				Str("confidence", string(est.Confidence)).
				Msg("no deal")
			continue
		}
		log.Info().
			Str("player", player.Name).
			Str("title", l.Title).
			Float64("price", l.Price).
			Float64("reference", deal.ReferencePrice).
			Float64("percent_under", deal.PercentUnder).
			Msg("deal found")
		result.Deals = append(result.Deals, *deal)
	}
	return nil
}

// invalid returns why a live listing cannot be evaluated, or "".
func (s *Scanner) invalid(l model.Listing, player roster.Player) string {
	fp := l.Fingerprint
	switch {
	case fp.IsJunk:
		return SkipJunk
	case fp.IsCollege:
		return SkipCollege
	case fp.Set == nil:
		return SkipNoSet
	case fp.Player == nil:
		return SkipNoPlayer
	case *fp.Player != player.Name:
		return SkipPlayerMismatch
	case l.Price <= 0 || l.Price < s.cfg.MinPrice || (s.cfg.MaxPrice > 0 && l.Price > s.cfg.MaxPrice):
		return SkipPriceRange
	}
	return ""
}

// compPool returns the parsed candidate pool for a card, searching only
// when no pool for the same card identity has been cached this scan.
func (s *Scanner) compPool(ctx context.Context, log zerolog.Logger, fp model.Fingerprint, stats *model.ScanStats) ([]model.Listing, error) {
	key := cache.CompsKey(deref(fp.Player), string(*fp.Set), deref(fp.Year), deref(fp.CardNumber))
	if fp.IsGraded {
		key = cache.BuildKey(key, "graded", string(derefGrader(fp.Grader)), deref(fp.Grade))
	}

	var pool []model.Listing
	hit, err := s.cache.Get(ctx, key, &pool)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("comp cache read failed")
	}
	if hit {
		stats.CompCacheHits++
		return pool, nil
	}

	stats.CompSearches++
	found, err := s.comps.Search(ctx, ebay.CompQuery(fp, s.cfg.CompLimit))
	if err != nil {
		stats.CompSearchFails++
		return nil, fmt.Errorf("comparable search: %w", err)
	}

	pool = make([]model.Listing, 0, len(found))
	for _, c := range found {
		c.Fingerprint = s.parser.Parse(c.Title)
		pool = append(pool, c)
	}

	if err := s.cache.Put(ctx, key, pool); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("comp cache write failed")
	}
	return pool, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefGrader(g *model.Grader) model.Grader {
	if g == nil {
		return ""
	}
	return *g
}
