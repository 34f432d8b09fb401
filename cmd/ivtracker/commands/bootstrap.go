package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/batchcache"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/internal/quote"
	"github.com/wonny/ivtracker/internal/sentiment"
	"github.com/wonny/ivtracker/internal/tracker"
	"github.com/wonny/ivtracker/internal/universe"
	"github.com/wonny/ivtracker/internal/valuation"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/database"
	"github.com/wonny/ivtracker/pkg/httputil"
	"github.com/wonny/ivtracker/pkg/logger"
	"github.com/wonny/ivtracker/pkg/redis"
)

// app holds the wired pipeline shared by every command
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	redis     *redis.Client
	db        *database.DB
	provider  contracts.QuoteProvider
	estimator *sentiment.Estimator
	runner    *batch.Runner
	tracker   *tracker.Service
}

// overrides are command flags applied on top of the environment
type overrides struct {
	tickers  []string
	workers  int
	provider string
}

func loadConfig(o overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if len(o.tickers) > 0 {
		cfg.Universe.Source = "config"
		cfg.Universe.Tickers = o.tickers
	}
	if o.workers > 0 {
		cfg.Batch.Workers = o.workers
	}
	if o.provider != "" {
		cfg.Quote.Provider = o.provider
	}

	return cfg, nil
}

// newApp wires config → logger → redis → database → providers → tracker
func newApp(ctx context.Context, o overrides) (*app, error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	// 1. Redis (optional)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 2. Database (only for the database universe)
	if cfg.Universe.Source == "database" {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
	}

	// 3. HTTP clients
	quoteClient := httputil.New(cfg, log)
	headlineClient := httputil.New(cfg, log).WithRetry(1, 500*time.Millisecond)

	var shared *redis.RateLimiter
	if a.redis.Enabled() {
		shared = redis.NewRateLimiter(a.redis, "ivtracker")
		headlineClient.WithRateLimiter(shared, redis.HeadlineRateLimit)
	}

	// 4. Pipeline stages
	a.provider, err = quote.NewProvider(cfg, quoteClient, shared, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create quote provider: %w", err)
	}

	a.estimator = sentiment.NewFromConfig(cfg, headlineClient, log)
	if a.redis.Enabled() {
		a.estimator.WithSharedCache(redis.NewCache(a.redis, "ivtracker:sentiment"))
	}

	engine := valuation.NewEngine(valuation.PolicyFromConfig(cfg.Valuation), log)
	a.runner = batch.NewRunner(a.provider, engine, a.estimator, cfg.Batch.Workers, log)

	// 5. Cache + tracker
	var store batchcache.Store = batchcache.NewMemoryStore()
	if a.redis.Enabled() {
		store = batchcache.NewRedisStore(a.redis)
	}
	cache := batchcache.NewService(store, cfg.Batch.CacheTTL, log).WithComputeTimeout(cfg.Batch.Timeout)

	source, err := universe.NewSource(cfg, a.db)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create universe source: %w", err)
	}
	a.tracker = tracker.NewService(source, a.runner, cache, log)

	policy := engine.Policy()
	log.WithFields(map[string]interface{}{
		"provider":       a.provider.Name(),
		"sentiment":      a.estimator.Source(),
		"universe":       source.Name(),
		"workers":        cfg.Batch.Workers,
		"mode":           a.runner.Mode(),
		"redis":          a.redis.Enabled(),
		"bond_yield":     policy.BondYield.String(),
		"default_growth": policy.DefaultGrowth.String(),
	}).Debug("Pipeline wired")

	return a, nil
}

// Close releases connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close redis")
		}
	}
}
