package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/logging"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

type trackingSet struct {
	members map[string]struct{}
	expires time.Time
}

// MemoryCache is an in-process Cache with the same semantics as RedisCache.
// It serves single-instance deployments that run without Redis.
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	tracking map[string]*trackingSet
	logger   logging.Logger
	now      func() time.Time
	sets     int
}

// sweepEvery is how many Set calls pass between full expiry sweeps.
const sweepEvery = 256

func NewMemoryCache(l logging.Logger) *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		tracking: make(map[string]*trackingSet),
		logger:   l.With("module", "memory_cache"),
		now:      time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest any) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		c.logger.Warn(ctx, "cache value does not decode", "key", key, "error", err)
		return false
	}
	return true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	ttl = effectiveTTL(ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now()
	if c.sets++; c.sets >= sweepEvery {
		c.sets = 0
		c.sweepLocked(t)
	}
	c.entries[key] = memoryEntry{data: payload, expires: t.Add(ttl)}

	tk := TrackingKey(PrefixOf(key))
	ts := c.liveTracking(tk, t)
	if ts == nil {
		ts = &trackingSet{members: make(map[string]struct{})}
		c.tracking[tk] = ts
	}
	ts.members[key] = struct{}{}
	if exp := t.Add(ttl + TrackingGrace); exp.After(ts.expires) {
		ts.expires = exp
	}
	return nil
}

func (c *MemoryCache) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	if ts := c.liveTracking(TrackingKey(PrefixOf(key)), c.now()); ts != nil {
		delete(ts.members, key)
	}
	return nil
}

func (c *MemoryCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tk := TrackingKey(prefix)
	if ts := c.liveTracking(tk, c.now()); ts != nil {
		for k := range ts.members {
			delete(c.entries, k)
		}
	}
	delete(c.tracking, tk)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

// Len reports the number of stored entries and tracking sets, expired or not.
func (c *MemoryCache) Len() (entries, trackingSets int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), len(c.tracking)
}

// sweepLocked drops every expired entry and tracking set. Callers hold c.mu.
func (c *MemoryCache) sweepLocked(t time.Time) {
	for k, e := range c.entries {
		if !t.Before(e.expires) {
			delete(c.entries, k)
		}
	}
	for k, ts := range c.tracking {
		if !t.Before(ts.expires) {
			delete(c.tracking, k)
		}
	}
}

// liveTracking returns the tracking set for tk, dropping it if expired.
// Callers hold c.mu.
func (c *MemoryCache) liveTracking(tk string, t time.Time) *trackingSet {
	ts, ok := c.tracking[tk]
	if !ok {
		return nil
	}
	if !t.Before(ts.expires) {
		delete(c.tracking, tk)
		return nil
	}
	return ts
}
