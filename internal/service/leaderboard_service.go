package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"lakbay.com/lakbaypoints/internal/cache"
	"lakbay.com/lakbaypoints/internal/repository"
)

const leaderboardCacheTTL = time.Minute

type LeaderboardEntry struct {
	Position    int     `json:"position"`
	Username    string  `json:"username"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	TotalPoints int     `json:"total_points"`
	Level       int     `json:"level"`
	LevelName   string  `json:"level_name"`
}

type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// leaderboardService is a read-through cache over the user table: redis
// holds the rendered entries, and the cache.Invalidator drops the key
// whenever a ledger or badge event lands. Without redis every read goes to
// the database.
type leaderboardService struct {
	repos repository.Repos
	rdb   *redis.Client
}

func NewLeaderboardService(repos repository.Repos, rdb *redis.Client) LeaderboardService {
	return &leaderboardService{repos: repos, rdb: rdb}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	if cached := s.fromCache(ctx); cached != nil {
		if len(cached) >= limit {
			return cached[:limit], nil
		}
	}

	users, err := s.repos.Users().TopByPoints(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, LeaderboardEntry{
			Position:    i + 1,
			Username:    user.Username,
			AvatarURL:   user.AvatarURL,
			TotalPoints: user.TotalPoints,
			Level:       user.Level,
			LevelName:   LevelName(user.Level),
		})
	}

	s.toCache(ctx, entries)
	return entries, nil
}

func (s *leaderboardService) fromCache(ctx context.Context) []LeaderboardEntry {
	if s.rdb == nil {
		return nil
	}
	raw, err := s.rdb.Get(ctx, cache.LeaderboardKey).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("leaderboard cache read failed: %v", err)
		}
		return nil
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}

func (s *leaderboardService) toCache(ctx context.Context, entries []LeaderboardEntry) {
	if s.rdb == nil || len(entries) == 0 {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cache.LeaderboardKey, raw, leaderboardCacheTTL).Err(); err != nil {
		log.Printf("leaderboard cache write failed: %v", err)
	}
}
