// Package quote implements the quote providers the batch runner fetches from.
package quote

import (
	"fmt"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
	"github.com/wonny/ivtracker/pkg/redis"
)

// NewProvider builds the provider selected by QUOTE_PROVIDER, rate limited
// by QUOTE_RATE_LIMIT. shared may be nil.
func NewProvider(cfg *config.Config, httpClient *httputil.Client, shared *redis.RateLimiter, log *logger.Logger) (contracts.QuoteProvider, error) {
	var inner contracts.QuoteProvider

	switch cfg.Quote.Provider {
	case "yahoo", "":
		inner = NewYahooProvider(httpClient, log, cfg.Quote.BaseURL).WithCookieURL(cfg.Quote.CookieURL)
	case "financego":
		inner = NewFinanceGoProvider(log)
	case "static":
		p, err := LoadStaticProvider(cfg.Quote.StaticFile)
		if err != nil {
			return nil, err
		}
		// canned data needs no throttling
		return p, nil
	default:
		return nil, fmt.Errorf("unknown quote provider: %s", cfg.Quote.Provider)
	}

	limited := NewRateLimited(inner, cfg.Quote.RateLimit)
	if shared != nil {
		limited.WithShared(shared, redis.QuoteRateLimit(inner.Name(), cfg.Quote.RateLimit))
	}

	log.WithFields(map[string]interface{}{
		"provider":   inner.Name(),
		"rate_limit": cfg.Quote.RateLimit,
		"shared":     shared != nil,
	}).Info("Quote provider ready")

	return limited, nil
}
