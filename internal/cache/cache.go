package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis stores JSON values with a TTL. A nil client makes every call a
// miss, so the app runs without Redis.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get decodes the value at key into dst. ok is false on a miss.
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	if r == nil || r.client == nil {
		return false, nil
	}
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "cache get %s", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrapf(err, "cache decode %s", key)
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r == nil || r.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "cache encode %s", key)
	}
	return errors.Wrapf(r.client.Set(ctx, r.key(key), raw, ttl).Err(), "cache set %s", key)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if r == nil || r.client == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, r.key(k))
	}
	return errors.Wrap(r.client.Del(ctx, full...).Err(), "cache delete")
}
