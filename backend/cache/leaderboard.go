// Package cache keeps the computed leaderboard in Redis between requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kassslll/philosofium/backend/services"

	"github.com/redis/go-redis/v9"
)

const (
	keyLeaderboardSnapshot = "leaderboard:snapshot:v1"

	// DefaultLeaderboardTTL bounds staleness for changes not caught by invalidation,
	// such as users being deactivated.
	DefaultLeaderboardTTL = time.Minute
)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// LeaderboardCache stores one JSON leaderboard snapshot under a fixed key.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient connects and pings Redis.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	if ttl <= 0 {
		ttl = DefaultLeaderboardTTL
	}
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Get(ctx context.Context) (*services.LeaderboardSnapshot, error) {
	raw, err := c.client.Get(ctx, keyLeaderboardSnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, services.ErrCacheMiss
		}
		return nil, err
	}

	var snap services.LeaderboardSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A snapshot we cannot read is as good as none.
		return nil, services.ErrCacheMiss
	}
	return &snap, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, snapshot *services.LeaderboardSnapshot) error {
	if snapshot == nil {
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyLeaderboardSnapshot, raw, c.ttl).Err()
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, keyLeaderboardSnapshot).Err()
}

var _ services.LeaderboardCache = (*LeaderboardCache)(nil)
