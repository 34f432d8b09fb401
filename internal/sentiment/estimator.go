// Package sentiment labels symbols Bullish or Neutral/Bearish from headline polarity.
package sentiment

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
	"github.com/wonny/ivtracker/pkg/redis"
)

// Estimator implements contracts.SentimentEstimator.
// Bullish iff the summed headline polarity is strictly positive.
// ⭐ SSOT: sentiment labels are decided here only
type Estimator struct {
	source  HeadlineSource
	lexicon *Lexicon
	logger  *logger.Logger

	ttl    time.Duration
	mu     sync.RWMutex
	cache  map[string]cacheEntry
	shared *redis.Cache
	now    func() time.Time
}

type cacheEntry struct {
	label     contracts.SentimentLabel
	expiresAt time.Time
}

// NewEstimator creates an estimator. ttl <= 0 disables caching.
func NewEstimator(source HeadlineSource, ttl time.Duration, log *logger.Logger) *Estimator {
	return &Estimator{
		source:  source,
		lexicon: NewLexicon(),
		logger:  log.Module("sentiment"),
		ttl:     ttl,
		cache:   make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// NewFromConfig wires the configured headline source
func NewFromConfig(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Estimator {
	var source HeadlineSource = MockHeadlines{}
	if cfg.Sentiment.Source == "headlines" {
		source = NewHeadlineScraper(httpClient, log, cfg.Sentiment.HeadlineURL, cfg.Sentiment.Selector)
	}
	return NewEstimator(source, cfg.Sentiment.CacheTTL, log)
}

// WithSharedCache adds a Redis tier so several processes reuse labels
func (e *Estimator) WithSharedCache(c *redis.Cache) *Estimator {
	e.shared = c
	return e
}

// Source returns the headline source name
func (e *Estimator) Source() string {
	return e.source.Name()
}

// EstimateSentiment implements contracts.SentimentEstimator. Failures degrade
// to Neutral/Bearish and are not cached.
func (e *Estimator) EstimateSentiment(ctx context.Context, symbol string) contracts.SentimentLabel {
	if label, ok := e.cached(ctx, symbol); ok {
		return label
	}

	headlines, err := e.source.Headlines(ctx, symbol)
	if err != nil {
		e.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"source": e.source.Name(),
			"error":  err.Error(),
		}).Warn("Headline retrieval failed, defaulting to Neutral/Bearish")
		return contracts.SentimentNeutralBearish
	}

	label := e.Label(headlines)
	e.store(ctx, symbol, label)

	e.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"headlines": len(headlines),
		"label":     label,
	}).Debug("Sentiment estimated")

	return label
}

// Label classifies a headline set
func (e *Estimator) Label(headlines []string) contracts.SentimentLabel {
	var total float64
	for _, h := range headlines {
		total += e.lexicon.Polarity(h)
	}
	if total > 0 {
		return contracts.SentimentBullish
	}
	return contracts.SentimentNeutralBearish
}

// Reset drops all cached labels
func (e *Estimator) Reset(ctx context.Context) {
	e.mu.Lock()
	e.cache = make(map[string]cacheEntry)
	e.mu.Unlock()

	if e.shared != nil {
		if err := e.shared.Clear(ctx); err != nil {
			e.logger.WithError(err).Warn("Failed to clear shared sentiment cache")
		}
	}
}

func (e *Estimator) cached(ctx context.Context, symbol string) (contracts.SentimentLabel, bool) {
	if e.ttl <= 0 {
		return "", false
	}

	e.mu.RLock()
	entry, ok := e.cache[symbol]
	e.mu.RUnlock()
	if ok && e.now().Before(entry.expiresAt) {
		return entry.label, true
	}

	if e.shared != nil {
		var label contracts.SentimentLabel
		found, err := e.shared.Get(ctx, redis.SentimentKey(symbol), &label)
		if err != nil {
			e.logger.WithError(err).Warn("Shared sentiment cache read failed")
		}
		if found {
			e.storeLocal(symbol, label)
			return label, true
		}
	}

	return "", false
}

func (e *Estimator) store(ctx context.Context, symbol string, label contracts.SentimentLabel) {
	if e.ttl <= 0 {
		return
	}
	e.storeLocal(symbol, label)

	if e.shared != nil {
		if err := e.shared.Set(ctx, redis.SentimentKey(symbol), label, e.ttl); err != nil {
			e.logger.WithError(err).Warn("Shared sentiment cache write failed")
		}
	}
}

func (e *Estimator) storeLocal(symbol string, label contracts.SentimentLabel) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	for k, v := range e.cache {
		if !now.Before(v.expiresAt) {
			delete(e.cache, k)
		}
	}
	e.cache[symbol] = cacheEntry{label: label, expiresAt: now.Add(e.ttl)}
}
