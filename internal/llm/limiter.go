package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter paces provider calls. Each success raises the rate by 20%
// up to twice the configured rate; each 429 halves it, down to a quarter.
type AdaptiveLimiter struct {
	mu   sync.Mutex
	lim  *rate.Limiter
	base rate.Limit
}

// NewAdaptiveLimiter creates a limiter at rps. A non-positive rps disables
// throttling.
func NewAdaptiveLimiter(rps float64, burst int) *AdaptiveLimiter {
	if rps <= 0 {
		return &AdaptiveLimiter{}
	}
	return &AdaptiveLimiter{
		lim:  rate.NewLimiter(rate.Limit(rps), max(burst, 1)),
		base: rate.Limit(rps),
	}
}

// Wait blocks until the next call may start.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	if a.lim == nil {
		return ctx.Err()
	}
	return a.lim.Wait(ctx)
}

// OnSuccess speeds the limiter up.
func (a *AdaptiveLimiter) OnSuccess() { a.scale(1.2) }

// OnRateLimit slows the limiter down.
func (a *AdaptiveLimiter) OnRateLimit() {
	if next, ok := a.scale(0.5); ok {
		zap.L().Warn("llm: provider throttled, slowing down", zap.Float64("rps", float64(next)))
	}
}

func (a *AdaptiveLimiter) scale(factor rate.Limit) (rate.Limit, bool) {
	if a.lim == nil {
		return rate.Inf, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next := min(max(a.lim.Limit()*factor, a.base/4), a.base*2)
	a.lim.SetLimit(next)
	return next, true
}

// Limit returns the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	if a.lim == nil {
		return rate.Inf
	}
	return a.lim.Limit()
}
