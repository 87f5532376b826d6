// internal/chat/ratelimit/redis.go
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implements the same fixed-window policy over redis, for
// deployments running more than one assistant instance. The window a request
// falls into is encoded in the key, so counters reset wholesale at window
// boundaries exactly like the in-memory limiter.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) TryConsume(ctx context.Context, sessionID string, maxPerWindow int, window time.Duration, now time.Time) (bool, error) {
	bucket := now.UnixMilli() / window.Milliseconds()
	key := fmt.Sprintf("chat:ratelimit:%s:%d", sessionID, bucket)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if count == 1 {
		// Two windows of expiry so a straggling request near the boundary
		// still sees its own counter.
		if err := l.client.Expire(ctx, key, 2*window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	return count <= int64(maxPerWindow), nil
}
