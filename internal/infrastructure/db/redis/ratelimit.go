package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter per key.
// Key format: rl:<key>:<window start unix>
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows limit hits per key in every window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: limit, window: window, now: time.Now}
}

// Allow counts one hit for key. When the window is exhausted it reports
// false and how long until the next window opens.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	if l.limit <= 0 {
		return true, 0, nil
	}

	now := l.now()
	start := now.Truncate(l.window)
	redisKey := windowKey(key, start)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("rate limit: %w", err)
	}

	ok, wait := l.verdict(incr.Val(), start, now)
	return ok, wait, nil
}

// verdict decides a hit given the window's counter after incrementing it.
func (l *RateLimiter) verdict(count int64, start, now time.Time) (bool, time.Duration) {
	if count > int64(l.limit) {
		return false, start.Add(l.window).Sub(now)
	}
	return true, 0
}

func windowKey(key string, start time.Time) string {
	return fmt.Sprintf("rl:%s:%d", key, start.Unix())
}
