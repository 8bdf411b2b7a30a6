package services

import "context"

// LeaderboardSnapshot is a computed leaderboard valid for one calendar day.
type LeaderboardSnapshot struct {
	AsOf    string             `json:"as_of"`
	Entries []LeaderboardEntry `json:"entries"`
}

// LeaderboardCache stores the most recent leaderboard snapshot.
type LeaderboardCache interface {
	Get(ctx context.Context) (*LeaderboardSnapshot, error)
	Set(ctx context.Context, snapshot *LeaderboardSnapshot) error
	Invalidate(ctx context.Context) error
}

// NoopLeaderboardCache always misses.
type NoopLeaderboardCache struct{}

func (NoopLeaderboardCache) Get(context.Context) (*LeaderboardSnapshot, error) {
	return nil, ErrCacheMiss
}

func (NoopLeaderboardCache) Set(context.Context, *LeaderboardSnapshot) error { return nil }

func (NoopLeaderboardCache) Invalidate(context.Context) error { return nil }
