// Package tracker ties the universe, batch runner and batch cache together
// behind the operations the API, scheduler and CLI call.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wonny/ivtracker/internal/batch"
	"github.com/wonny/ivtracker/internal/batchcache"
	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/logger"
)

// Listener is called after every fresh, non-empty batch
type Listener func(result *contracts.BatchResult)

// Service serves recommendation batches
// ⭐ SSOT: universe → batch → cache orchestration
type Service struct {
	universe contracts.UniverseSource
	runner   *batch.Runner
	cache    *batchcache.Service
	logger   *logger.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// NewService creates a tracker service
func NewService(universe contracts.UniverseSource, runner *batch.Runner, cache *batchcache.Service, log *logger.Logger) *Service {
	return &Service{
		universe: universe,
		runner:   runner,
		cache:    cache,
		logger:   log.Module("tracker"),
	}
}

// Subscribe registers a listener for fresh batches
func (s *Service) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Recommendations returns the cached batch for the current universe,
// computing it on a miss. cached reports a cache hit.
// The error is batch.ErrNoSymbols or batch.ErrEmptyBatchResult when no rows exist.
func (s *Service) Recommendations(ctx context.Context) (result *contracts.BatchResult, cached bool, err error) {
	symbols, err := s.universe.Symbols(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("resolve universe from %s: %w", s.universe.Name(), err)
	}
	return s.cache.Get(ctx, symbols, s.compute)
}

// Refresh drops the cache and recomputes
func (s *Service) Refresh(ctx context.Context) (*contracts.BatchResult, error) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WithError(err).Warn("Cache invalidation failed, recomputing anyway")
	}
	result, _, err := s.Recommendations(ctx)
	return result, err
}

// Invalidate drops the cache without recomputing
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func (s *Service) compute(ctx context.Context, symbols []string) (*contracts.BatchResult, error) {
	report, err := s.runner.Run(ctx, symbols)

	result := &contracts.BatchResult{
		Rows:        report.Rows,
		Skipped:     report.Skipped(),
		GeneratedAt: report.FinishedAt,
	}

	switch {
	case errors.Is(err, batch.ErrNoSymbols):
		s.logger.Warn("Universe is empty")
		return result, err
	case errors.Is(err, batch.ErrBatchInterrupted):
		s.logger.WithError(err).Warn("Batch interrupted, discarding partial rows")
		return result, err
	case err != nil:
		s.logger.WithFields(map[string]interface{}{
			"requested": report.Requested,
			"skipped":   len(result.Skipped),
		}).Error("Batch produced no rows")
		return result, err
	}

	s.notify(result)
	return result, nil
}

func (s *Service) notify(result *contracts.BatchResult) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(result)
	}
}
