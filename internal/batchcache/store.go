package batchcache

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/redis"
)

// Store holds whole-batch results by universe key
type Store interface {
	Get(ctx context.Context, key string) (*contracts.BatchResult, bool, error)
	Set(ctx context.Context, key string, result *contracts.BatchResult, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local Store
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	result    *contracts.BatchResult
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) (*contracts.BatchResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	return e.result, true, nil
}

// Set implements Store. Expired entries are pruned on write.
func (m *MemoryStore) Set(_ context.Context, key string, result *contracts.BatchResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[key] = memoryEntry{result: result, expiresAt: now.Add(ttl)}
	return nil
}

// Clear implements Store
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]memoryEntry)
	return nil
}

// RedisStore shares batches between processes through pkg/redis
type RedisStore struct {
	cache *redis.Cache
}

// NewRedisStore creates a store on a dedicated key prefix
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{cache: redis.NewCache(client, "ivtracker:batch")}
}

// Get implements Store
func (r *RedisStore) Get(ctx context.Context, key string) (*contracts.BatchResult, bool, error) {
	var result contracts.BatchResult
	found, err := r.cache.Get(ctx, redis.BatchKey(key), &result)
	if err != nil || !found {
		return nil, false, err
	}
	return &result, true, nil
}

// Set implements Store
func (r *RedisStore) Set(ctx context.Context, key string, result *contracts.BatchResult, ttl time.Duration) error {
	return r.cache.Set(ctx, redis.BatchKey(key), result, ttl)
}

// Clear implements Store
func (r *RedisStore) Clear(ctx context.Context) error {
	return r.cache.Clear(ctx)
}
