package quote

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/redis"
)

// RateLimited throttles an inner provider with a process-local token bucket
// and, when configured, the shared Redis sliding window.
type RateLimited struct {
	inner     contracts.QuoteProvider
	local     *rate.Limiter
	shared    *redis.RateLimiter
	sharedCfg redis.RateLimitConfig
}

// NewRateLimited wraps inner. perSecond <= 0 disables the local limit.
func NewRateLimited(inner contracts.QuoteProvider, perSecond float64) *RateLimited {
	r := &RateLimited{inner: inner}
	if perSecond > 0 {
		r.local = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return r
}

// WithShared adds the distributed limiter
func (r *RateLimited) WithShared(limiter *redis.RateLimiter, cfg redis.RateLimitConfig) *RateLimited {
	r.shared = limiter
	r.sharedCfg = cfg
	return r
}

// Name implements contracts.QuoteProvider
func (r *RateLimited) Name() string { return r.inner.Name() }

// GetQuoteAndFundamentals implements contracts.QuoteProvider
func (r *RateLimited) GetQuoteAndFundamentals(ctx context.Context, symbol string) (*contracts.QuoteData, error) {
	if r.local != nil {
		if err := r.local.Wait(ctx); err != nil {
			return nil, &FetchError{Kind: KindRateLimit, Symbol: symbol, Message: "local rate limit wait aborted", Cause: err}
		}
	}
	if r.shared != nil {
		if err := r.shared.Wait(ctx, r.sharedCfg); err != nil {
			return nil, &FetchError{Kind: KindRateLimit, Symbol: symbol, Message: "shared rate limit wait aborted", Cause: err}
		}
	}
	return r.inner.GetQuoteAndFundamentals(ctx, symbol)
}
