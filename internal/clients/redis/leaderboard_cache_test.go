package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/expoverse/expoverse-backend/internal/platform/logger"
)

type testEntry struct {
	Rank  int    `json:"rank"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func testCache(t *testing.T) (*leaderboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := &leaderboardCache{
		log: &logger.Logger{SugaredLogger: zap.NewNop().Sugar()},
		rdb: goredis.NewClient(&goredis.Options{Addr: mr.Addr()}),
		ttl: 30 * time.Second,
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestLeaderboardCacheMiss(t *testing.T) {
	cache, _ := testCache(t)

	var out []testEntry
	hit, err := cache.GetInto(context.Background(), "2025-01-15", &out)
	if err != nil {
		t.Fatalf("GetInto error: %v", err)
	}
	if hit {
		t.Fatalf("expected miss on empty cache")
	}
}

func TestLeaderboardCacheRoundTrip(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	in := []testEntry{
		{Rank: 1, Name: "Asha", Score: 90},
		{Rank: 2, Name: "Ravi", Score: 80},
	}
	if err := cache.Set(ctx, "2025-01-15", in); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	var out []testEntry
	hit, err := cache.GetInto(ctx, "2025-01-15", &out)
	if err != nil {
		t.Fatalf("GetInto error: %v", err)
	}
	if !hit {
		t.Fatalf("expected hit after Set")
	}
	if len(out) != 2 || out[0].Name != "Asha" || out[1].Rank != 2 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	// Days are independent keys.
	hit, err = cache.GetInto(ctx, "2025-01-16", &out)
	if err != nil {
		t.Fatalf("GetInto error: %v", err)
	}
	if hit {
		t.Fatalf("expected miss for a different day")
	}
}

func TestLeaderboardCacheInvalidate(t *testing.T) {
	cache, _ := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "2025-01-15", []testEntry{{Rank: 1, Name: "Asha"}}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := cache.Invalidate(ctx, "2025-01-15"); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}

	var out []testEntry
	hit, err := cache.GetInto(ctx, "2025-01-15", &out)
	if err != nil {
		t.Fatalf("GetInto error: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestLeaderboardCacheExpiry(t *testing.T) {
	cache, mr := testCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "2025-01-15", []testEntry{{Rank: 1, Name: "Asha"}}); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	mr.FastForward(31 * time.Second)

	var out []testEntry
	hit, err := cache.GetInto(ctx, "2025-01-15", &out)
	if err != nil {
		t.Fatalf("GetInto error: %v", err)
	}
	if hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}
