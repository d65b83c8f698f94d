package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/expoverse/expoverse-backend/internal/platform/envutil"
	"github.com/expoverse/expoverse-backend/internal/platform/logger"
)

// LeaderboardCache keeps the computed daily leaderboard for a short TTL so
// repeated polling does not hit Postgres. Entries are keyed by day bucket and
// invalidated on every successful submission.
type LeaderboardCache interface {
	GetInto(ctx context.Context, day string, dest interface{}) (bool, error)
	Set(ctx context.Context, day string, entries interface{}) error
	Invalidate(ctx context.Context, day string) error
	Close() error
}

type leaderboardCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLeaderboardCache(log *logger.Logger) (LeaderboardCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.Str("REDIS_ADDR", "")
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.Str("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(envutil.Int("REDIS_LEADERBOARD_TTL_SECONDS", 30)) * time.Second
	return &leaderboardCache{
		log: log.With("client", "LeaderboardCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(day string) string {
	return "leaderboard:" + day
}

func (c *leaderboardCache) GetInto(ctx context.Context, day string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(day)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *leaderboardCache) Set(ctx context.Context, day string, entries interface{}) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, cacheKey(day), raw, c.ttl).Err()
}

func (c *leaderboardCache) Invalidate(ctx context.Context, day string) error {
	return c.rdb.Del(ctx, cacheKey(day)).Err()
}

func (c *leaderboardCache) Close() error {
	return c.rdb.Close()
}
