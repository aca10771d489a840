package caching

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value   string
	count   int
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

// memoryCacheService keeps auth state in process for single-instance deployments without Redis.
type memoryCacheService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCacheService() CacheService {
	return newMemoryCacheService(time.Now)
}

func newMemoryCacheService(now func() time.Time) *memoryCacheService {
	return &memoryCacheService{entries: make(map[string]memoryEntry), now: now}
}

func (m *memoryCacheService) lookup(key string) (memoryEntry, bool) {
	entry, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if entry.expired(m.now()) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *memoryCacheService) expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *memoryCacheService) IsRateLimited(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cacheKey := rateLimitKey(key)
	entry, ok := m.lookup(cacheKey)
	if !ok {
		entry = memoryEntry{expires: m.expiry(window)}
	}
	entry.count++
	m.entries[cacheKey] = entry
	return entry.count > limit, nil
}

func (m *memoryCacheService) ResetRateLimit(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, rateLimitKey(key))
	return nil
}

func (m *memoryCacheService) RevokeToken(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[revokedKey(tokenID)] = memoryEntry{value: "1", expires: m.expiry(ttl)}
	return nil
}

func (m *memoryCacheService) IsTokenRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(revokedKey(tokenID))
	return ok, nil
}

func (m *memoryCacheService) Ping(context.Context) error { return nil }

func (m *memoryCacheService) Close() error { return nil }
