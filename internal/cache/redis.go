package cache

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // redis.Nil matching
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Redis is a Cache backed by a Redis server. Every key is stored under prefix
// so several deployments can share one database.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps rdb, namespacing keys with prefix (may be empty)
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get loads key and unmarshals it into dest. A missing key is not an error.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.rdb.Del(ctx, r.key(key)) // Drop snapshots written by an older schema
		return false, err
	}
	return true, nil
}

// Set stores value as JSON for ttl
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(key), raw, ttl).Err()
}

// Delete removes keys in one round trip
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.rdb.Del(ctx, full...).Err()
}
