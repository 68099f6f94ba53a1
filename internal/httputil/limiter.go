// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter is a token-bucket gate on outbound requests. Wait suspends only
// the calling goroutine, so one throttled source never stalls the others.
// A nil *Limiter never blocks.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter returns a limiter admitting perSecond requests per second with
// the given burst. A non-positive rate disables throttling; burst is
// clamped to at least 1.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return &Limiter{rl: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if err := l.rl.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
