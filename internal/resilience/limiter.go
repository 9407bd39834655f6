package resilience

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces calls to a remote service. A nil *Limiter never waits.
type Limiter struct {
	rl *rate.Limiter
}

// NewLimiter allows perSecond calls per second with the given burst.
// A non-positive rate returns nil, meaning unlimited.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{rl: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	return l.rl.Wait(ctx)
}
