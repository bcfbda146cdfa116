package persist

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores snapshots in Redis. Suitable for server deployments where
// threads must survive instance restarts.
type RedisKV struct {
	rdb *redis.Client
}

var _ KV = &RedisKV{}

func NewRedisKV(rdb *redis.Client) *RedisKV {
	return &RedisKV{rdb: rdb}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	// No TTL: the snapshot is the system of record for local thread state
	return r.rdb.Set(ctx, key, value, 0).Err()
}
