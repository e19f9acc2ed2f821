package health

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker checks the Redis instance backing the dataset or the rate
// limiter. With a key set it also requires the key to exist.
type RedisChecker struct {
	client redis.Cmdable
	key    string
}

// NewRedisChecker creates a checker that only pings.
func NewRedisChecker(client redis.Cmdable) *RedisChecker {
	return &RedisChecker{client: client}
}

// NewRedisKeyChecker creates a checker that pings and requires key.
func NewRedisKeyChecker(client redis.Cmdable, key string) *RedisChecker {
	return &RedisChecker{client: client, key: key}
}

// ErrKeyMissing is returned when the dataset key is absent.
var ErrKeyMissing = errors.New("key does not exist")

// HealthCheck sends PING and, if configured, EXISTS key.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return err
	}
	if r.key == "" {
		return nil
	}
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyMissing, r.key)
	}
	return nil
}
