// Package cache provides a TTL key/value cache with prefix-tracked
// invalidation.
//
// Every Set registers its key in a tracking set named after the key's
// prefix (the text before the first ':'), so RemoveByPrefix can drop a
// whole family of entries without scanning the keyspace. Values are stored
// as JSON.
package cache

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL = 30 * time.Minute

	// TrackingGrace is how much longer a tracking set outlives the entries
	// it indexes.
	TrackingGrace = 5 * time.Minute

	trackingKeyPrefix = "_tracking:"
	delimiter         = ":"
)

// Cache is a best-effort store. Get never fails: backend errors and values
// that do not decode into dest are reported as misses. The contents of dest
// are unspecified after a miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	RemoveByPrefix(ctx context.Context, prefix string) error
}

// Lookup reads key into a fresh T.
func Lookup[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	if !c.Get(ctx, key, &v) {
		var zero T
		return zero, false
	}
	return v, true
}

// PrefixOf returns the invalidation prefix of key: everything before the
// first ':'. A key without a delimiter, or starting with one, is its own
// prefix.
func PrefixOf(key string) string {
	if i := strings.Index(key, delimiter); i > 0 {
		return key[:i]
	}
	return key
}

// TrackingKey names the set that indexes keys with the given prefix.
func TrackingKey(prefix string) string {
	return trackingKeyPrefix + prefix
}

func effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return ttl
}
