package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// liveClient connects to the Redis named by REDIS_TEST_ADDR and skips the
// test when it is unset.
func liveClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client, err := Connect(context.Background(), Config{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func uniqueKey(prefix string) string {
	return fmt.Sprintf("%s:%d", prefix, time.Now().UnixNano())
}

func TestRateLimiter_AllowCountsPerWindow(t *testing.T) {
	client := liveClient(t)
	ctx := context.Background()

	l := NewRateLimiter(client, 2, time.Minute)
	fixed := time.Date(2024, 5, 1, 10, 0, 15, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	key := uniqueKey("login:test")
	t.Cleanup(func() { client.Del(ctx, windowKey(key, fixed.Truncate(time.Minute))) })

	for i := 1; i <= 2; i++ {
		ok, _, err := l.Allow(ctx, key)
		if err != nil || !ok {
			t.Fatalf("hit %d: expected allow, got ok=%v err=%v", i, ok, err)
		}
	}

	ok, wait, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("third hit: %v", err)
	}
	if ok || wait != 45*time.Second {
		t.Fatalf("third hit: expected deny with 45s wait, got ok=%v wait=%s", ok, wait)
	}

	ttl, err := client.TTL(ctx, windowKey(key, fixed.Truncate(time.Minute))).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected window ttl, got %s", ttl)
	}
}

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	client := liveClient(t)
	ctx := context.Background()

	s := NewIdempotencyStore(client, time.Minute)
	scope, key := uniqueKey("booking:acc-1"), "k-1"
	t.Cleanup(func() { client.Del(ctx, idempotencyKey(scope, key)) })

	if _, found, err := s.Lookup(ctx, scope, key); err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}

	if err := s.Remember(ctx, scope, key, "bk-1"); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if err := s.Remember(ctx, scope, key, "bk-2"); err != nil {
		t.Fatalf("second remember: %v", err)
	}

	id, found, err := s.Lookup(ctx, scope, key)
	if err != nil || !found || id != "bk-1" {
		t.Fatalf("expected bk-1, got id=%q found=%v err=%v", id, found, err)
	}
}
