package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/guarzo/cardsnipe/internal/cache"
	"github.com/guarzo/cardsnipe/internal/config"
	"github.com/guarzo/cardsnipe/internal/ebay"
	"github.com/guarzo/cardsnipe/internal/fingerprint"
	"github.com/guarzo/cardsnipe/internal/ratelimit"
	"github.com/guarzo/cardsnipe/internal/roster"
	"github.com/guarzo/cardsnipe/internal/scanner"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	players []roster.Player
	parser  *fingerprint.Parser
	store   cache.Store
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	players := roster.Default()
	if cfg.RosterFile != "" {
		loaded, err := roster.Load(cfg.RosterFile)
		if err != nil {
			return nil, err
		}
		players = loaded
	}

	return &app{
		cfg:     cfg,
		log:     log,
		players: players,
		parser:  fingerprint.NewParser(fingerprint.NewResolver(players)),
	}, nil
}

// openStore returns the Redis comp cache when REDIS_ADDR is set and
// reachable, otherwise the in-process store.
func (a *app) openStore(ctx context.Context) (cache.Store, error) {
	if a.cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB, time.Hour, "cardsnipe")
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = rs.Ping(pingCtx)
			cancel()
			if err == nil {
				a.log.Info().Str("addr", a.cfg.RedisAddr).Msg("using redis comp cache")
				return rs, nil
			}
			rs.Close()
		}
		a.log.Warn().Err(err).Msg("redis unavailable, falling back to in-memory comp cache")
	}

	mem, err := cache.NewMemory(a.cfg.CacheFile, 0)
	if err != nil {
		return nil, fmt.Errorf("open comp cache: %w", err)
	}
	return mem, nil
}

// newScanner wires the eBay searchers, pacing and comp cache into a
// scanner.
func (a *app) newScanner(ctx context.Context, progress scanner.ProgressFunc) (*scanner.Scanner, error) {
	pacers := ratelimit.NewDefaultPacers()
	if a.cfg.SearchInterval != 3*time.Second || a.cfg.SearchBurst != 1 {
		pacers = ratelimit.NewPacers(a.cfg.SearchInterval, a.cfg.SearchBurst)
	}

	tokens := ebay.NewTokenSource(ebay.OAuthConfig{
		ClientID:     a.cfg.EbayClientID,
		ClientSecret: a.cfg.EbayClientSecret,
		Sandbox:      a.cfg.EbaySandbox,
	})
	browse := ebay.NewBrowseClient(tokens, pacers.Browse, ebay.BrowseConfig{Sandbox: a.cfg.EbaySandbox})
	sold := ebay.NewSoldScraper(pacers.Sold, ebay.SoldConfig{})

	var comps ebay.Searcher
	switch a.cfg.CompSource {
	case config.CompSourceSold:
		comps = sold
	case config.CompSourceBoth:
		comps = ebay.NewMultiSearcher(browse, sold)
	default:
		comps = browse
	}

	if a.store == nil {
		store, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	scanCfg := scanner.DefaultConfig()
	scanCfg.MinPrice = a.cfg.MinPrice
	scanCfg.MaxPrice = a.cfg.MaxPrice
	scanCfg.SearchLimit = a.cfg.SearchLimit
	scanCfg.Analysis = a.cfg.Analysis

	a.log.Debug().
		Str("live", browse.Name()).
		Str("comps", comps.Name()).
		Dur("interval", pacers.Browse.Interval()).
		Msg("scanner wired")

	return scanner.New(scanCfg, scanner.Deps{
		Live:     browse,
		Comps:    comps,
		Parser:   a.parser,
		Cache:    a.store,
		Logger:   a.log,
		Progress: progress,
	})
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close comp cache")
		}
	}
}
