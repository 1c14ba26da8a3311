package ordercode

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const counterTTL = 48 * time.Hour

type counterClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisCounter keeps one INCR key per calendar day, so concurrent creators never share a number.
type RedisCounter struct {
	client    counterClient
	namespace string
	loc       *time.Location
}

func NewRedisCounter(addr, namespace string, loc *time.Location) *RedisCounter {
	return &RedisCounter{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		namespace: namespace,
		loc:       loc,
	}
}

func NewRedisCounterWith(c counterClient, namespace string, loc *time.Location) *RedisCounter {
	return &RedisCounter{client: c, namespace: namespace, loc: loc}
}

func (r *RedisCounter) Key(now time.Time) string {
	return fmt.Sprintf("%s:order-seq:%s", r.namespace, now.In(r.loc).Format(dateLayout))
}

func (r *RedisCounter) Next(ctx context.Context, now time.Time) (int64, error) {
	key := r.Key(now)
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, counterTTL).Err(); err != nil {
			return 0, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n, nil
}

func (r *RedisCounter) Close() error {
	if c, ok := r.client.(*redis.Client); ok {
		return c.Close()
	}
	return nil
}
