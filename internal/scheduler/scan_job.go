package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/guarzo/cardsnipe/internal/model"
	"github.com/guarzo/cardsnipe/internal/roster"
	"github.com/guarzo/cardsnipe/internal/scanner"
)

// Scanner runs one scan.
type Scanner interface {
	Scan(ctx context.Context, players []roster.Player) (*model.ScanResult, error)
}

// Results holds the most recent completed scan. It is safe for concurrent
// use.
type Results struct {
	mu     sync.RWMutex
	latest *model.ScanResult
}

// Store replaces the latest result.
func (r *Results) Store(result *model.ScanResult) {
	r.mu.Lock()
	r.latest = result
	r.mu.Unlock()
}

// Latest returns the most recent result, or nil before the first scan.
func (r *Results) Latest() *model.ScanResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// ScanJob scans the whole roster and records the result.
type ScanJob struct {
	log     zerolog.Logger
	scanner Scanner
	players []roster.Player
	results *Results
	timeout time.Duration
}

// ScanJobConfig holds configuration for a scan job
type ScanJobConfig struct {
	Log     zerolog.Logger
	Scanner Scanner
	Players []roster.Player
	Results *Results
	Timeout time.Duration // 0 means no limit
}

// NewScanJob creates a new scan job
func NewScanJob(cfg ScanJobConfig) *ScanJob {
	results := cfg.Results
	if results == nil {
		results = &Results{}
	}
	return &ScanJob{
		log:     cfg.Log.With().Str("job", "deal_scan").Logger(),
		scanner: cfg.Scanner,
		players: cfg.Players,
		results: results,
		timeout: cfg.Timeout,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "deal_scan"
}

// Results returns the holder the job writes to.
func (j *ScanJob) Results() *Results {
	return j.results
}

// Run executes one scan. A scan already started elsewhere is not an error;
// this tick is skipped. Only complete scans replace the stored result.
func (j *ScanJob) Run() error {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	result, err := j.scanner.Scan(ctx, j.players)
	if errors.Is(err, scanner.ErrScanInProgress) {
		j.log.Info().Msg("scan already running, skipping scheduled scan")
		return nil
	}
	if err != nil {
		return err
	}

	j.results.Store(result)
	j.log.Info().
		Str("scan_id", result.ID).
		Int("deals", len(result.Deals)).
		Msg("scheduled scan stored")
	return nil
}
