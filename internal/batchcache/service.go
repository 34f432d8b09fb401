// Package batchcache caches whole batch results keyed by the ticker universe.
// A cached result is shared read-only until its TTL expires or the cache is
// invalidated; entries are never updated per symbol.
package batchcache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/logger"
)

// DefaultComputeTimeout bounds a single batch computation
const DefaultComputeTimeout = 90 * time.Second

// ComputeFunc produces a fresh batch for a universe
type ComputeFunc func(ctx context.Context, universe []string) (*contracts.BatchResult, error)

// Service is a get-or-compute cache over a Store
// ⭐ SSOT: batch caching policy lives here only
type Service struct {
	store          Store
	ttl            time.Duration
	computeTimeout time.Duration
	group          singleflight.Group
	generation     atomic.Uint64 // bumped by Invalidate
	logger         *logger.Logger
	now            func() time.Time
}

// NewService creates a cache service. ttl <= 0 disables caching.
func NewService(store Store, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		store:          store,
		ttl:            ttl,
		computeTimeout: DefaultComputeTimeout,
		logger:         log.Module("batchcache"),
		now:            time.Now,
	}
}

// WithComputeTimeout bounds each computation. d <= 0 keeps the current value.
func (s *Service) WithComputeTimeout(d time.Duration) *Service {
	if d > 0 {
		s.computeTimeout = d
	}
	return s
}

// TTL returns the configured time-to-live
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached batch for universe, computing it on a miss.
// Concurrent misses for the same universe share one computation.
//
// The computation runs detached from ctx, bounded by the compute timeout,
// so a caller that gives up does not cut the batch short for the others.
// That caller gets ctx.Err() back while the computation finishes.
// Results with no rows, returned with an error, produced after their
// context ended, or started before the last Invalidate are not cached.
func (s *Service) Get(ctx context.Context, universe []string, compute ComputeFunc) (*contracts.BatchResult, bool, error) {
	key := Key(universe)

	if result, ok := s.lookup(ctx, key); ok {
		return result, true, nil
	}

	gen := s.generation.Load()
	flightKey := fmt.Sprintf("%s@%d", key, gen)

	ch := s.group.DoChan(flightKey, func() (interface{}, error) {
		return s.compute(context.WithoutCancel(ctx), key, gen, universe, compute)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		s.logger.WithFields(map[string]interface{}{
			"key":    key[:12],
			"shared": res.Shared,
		}).Debug("Batch cache miss")

		result, _ := res.Val.(*contracts.BatchResult)
		return result, false, res.Err
	}
}

func (s *Service) compute(parent context.Context, key string, gen uint64, universe []string, compute ComputeFunc) (*contracts.BatchResult, error) {
	ctx, cancel := context.WithTimeout(parent, s.computeTimeout)
	defer cancel()

	if result, ok := s.lookup(ctx, key); ok {
		return result, nil
	}

	result, err := compute(ctx, universe)
	if result == nil {
		result = &contracts.BatchResult{}
	}
	result.Universe = append([]string(nil), universe...)
	result.CacheKey = key
	if result.GeneratedAt.IsZero() {
		result.GeneratedAt = s.now()
	}

	switch {
	case err != nil, result.Empty(), s.ttl <= 0:
		// not cacheable
	case ctx.Err() != nil:
		s.logger.WithError(ctx.Err()).Warn("Batch computation outlived its context, not caching")
	case s.generation.Load() != gen:
		s.logger.Info("Batch cache invalidated during computation, not caching")
	default:
		if setErr := s.store.Set(ctx, key, result, s.ttl); setErr != nil {
			s.logger.WithError(setErr).Warn("Failed to store batch result")
		}
	}
	return result, err
}

// Invalidate drops every cached batch
// and keeps in-flight computations from storing their results.
func (s *Service) Invalidate(ctx context.Context) error {
	s.generation.Add(1)
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("Batch cache invalidated")
	return nil
}

func (s *Service) lookup(ctx context.Context, key string) (*contracts.BatchResult, bool) {
	if s.ttl <= 0 {
		return nil, false
	}
	result, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("Batch cache read failed, recomputing")
		return nil, false
	}
	return result, ok
}
