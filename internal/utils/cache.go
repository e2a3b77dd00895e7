package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // Cached values are stored as JSON
	"errors"        // redis.Nil detection
	"time"          // TTLs

	"github.com/redis/go-redis/v9" // Redis client
)

// CacheTTL is the lifetime of cached listing responses
const CacheTTL = 60 * time.Second

// scanBatch is the COUNT hint used when walking keys by prefix
const scanBatch = 100

// GetCache loads key into dest. The bool is false on a miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil // Miss
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err // Corrupt entry counts as a miss for callers that ignore errors
	}
	return true, nil
}

// SetCache stores value under key as JSON for ttl
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// DeleteCache drops the given keys
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}

// DeleteCacheByPrefix drops every key starting with prefix
func DeleteCacheByPrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	var keys []string
	iter := rdb.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return DeleteCache(ctx, rdb, keys...)
}
