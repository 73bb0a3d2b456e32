package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultguard/internal/logging"
	"github.com/redis/go-redis/v9"
)

// setTracked stores the value and indexes it in one round trip. The
// tracking set's expiry is only ever extended so that a short-lived entry
// cannot orphan a longer-lived sibling.
var setTracked = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('SADD', KEYS[2], KEYS[1])
local ttl = redis.call('PTTL', KEYS[2])
if ttl < tonumber(ARGV[3]) then
	redis.call('PEXPIRE', KEYS[2], ARGV[3])
end
return 1
`)

// dropTracked deletes every member of a tracking set and the set itself.
// The members are not declared as KEYS, so the script needs all keys on
// one node and RedisCache only accepts a single-node client.
var dropTracked = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
for _, k in ipairs(members) do
	redis.call('DEL', k)
end
redis.call('DEL', KEYS[1])
return #members
`)

// RedisCache implements Cache on a single Redis node. Cluster clients are
// not supported.
type RedisCache struct {
	rdb    *redis.Client
	logger logging.Logger
}

func NewRedisCache(rdb *redis.Client, l logging.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, logger: l.With("module", "redis_cache")}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.logger.Warn(ctx, "cache get failed", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		c.logger.Warn(ctx, "cache value does not decode", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	ttl = effectiveTTL(ttl)

	keys := []string{key, TrackingKey(PrefixOf(key))}
	err = setTracked.Run(ctx, c.rdb, keys,
		string(payload), ttl.Milliseconds(), (ttl + TrackingGrace).Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key)
		p.SRem(ctx, TrackingKey(PrefixOf(key)), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache remove %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) RemoveByPrefix(ctx context.Context, prefix string) error {
	n, err := dropTracked.Run(ctx, c.rdb, []string{TrackingKey(prefix)}).Int()
	if err != nil {
		return fmt.Errorf("cache remove prefix %s: %w", prefix, err)
	}
	c.logger.Debug(ctx, "cache prefix invalidated", "prefix", prefix, "keys", n)
	return nil
}

// Ping reports backend reachability for health checks.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
