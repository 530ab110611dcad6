// Package ratelimit paces outbound listing requests so the fetcher
// never issues back-to-back calls against the remote API.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval keeps us at roughly half of the remote service's
// documented request ceiling.
const DefaultInterval = 2 * time.Second

// Limiter enforces a minimum interval between grants. The first Wait
// returns immediately; every later Wait blocks until the interval has
// elapsed since the previous grant. Backed by a token bucket on the
// monotonic clock, so wall-clock adjustments cannot shorten the gap.
type Limiter struct {
	rl *rate.Limiter
}

func New(minInterval time.Duration) *Limiter {
	if minInterval <= 0 {
		minInterval = DefaultInterval
	}
	return &Limiter{rl: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait blocks until the limiter grants a slot or ctx is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.rl.Wait(ctx)
}
