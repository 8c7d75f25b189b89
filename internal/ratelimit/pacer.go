// Package ratelimit paces outbound calls to upstream services.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer is a token bucket that spaces calls to one upstream. It replaces
// fixed sleeps between requests: a call waits only as long as the bucket
// requires.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer allows one call per interval with bursts of up to burst calls.
// A non-positive interval disables pacing.
func NewPacer(interval time.Duration, burst int) *Pacer {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Pacer{
		limiter:  rate.NewLimiter(limit, burst),
		interval: interval,
	}
}

// Wait blocks until a call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer wait: %w", err)
	}
	return nil
}

// Interval returns the configured spacing between calls.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Pacers holds one pacer per upstream the scanner talks to.
type Pacers struct {
	Browse *Pacer // eBay Browse API
	Sold   *Pacer // eBay sold-listings pages
}

// NewDefaultPacers creates pacers with conservative defaults.
func NewDefaultPacers() *Pacers {
	return &Pacers{
		// Browse API: 5,000 calls per day on the default tier; a scan of
		// twenty players with ~20 comp searches each fits in one call per 3s.
		Browse: NewPacer(3*time.Second, 1),

		// Sold pages are scraped, so stay well below anything bot-like.
		Sold: NewPacer(5*time.Second, 1),
	}
}

// NewPacers creates pacers with the same interval and burst for every
// upstream.
func NewPacers(interval time.Duration, burst int) *Pacers {
	return &Pacers{
		Browse: NewPacer(interval, burst),
		Sold:   NewPacer(interval, burst),
	}
}
