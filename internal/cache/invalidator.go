package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"lakbay.com/lakbaypoints/internal/event"
)

const LeaderboardKey = "leaderboard:top"

func ProfileKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:user:%s", userID.String())
}

// Invalidator drops cached reads when the engine reports a state change.
// A nil redis client disables it without affecting the callers.
type Invalidator struct {
	rdb *redis.Client
}

func NewInvalidator(rdb *redis.Client) *Invalidator {
	return &Invalidator{rdb: rdb}
}

var _ event.Publisher = (*Invalidator)(nil)

func (i *Invalidator) PublishLedgerChanged(ctx context.Context, e event.LedgerChanged) {
	i.drop(ctx, ProfileKey(e.UserID), LeaderboardKey)
}

func (i *Invalidator) PublishBadgeAwarded(ctx context.Context, e event.BadgeAwarded) {
	i.drop(ctx, ProfileKey(e.UserID), LeaderboardKey)
}

func (i *Invalidator) drop(ctx context.Context, keys ...string) {
	if i.rdb == nil {
		return
	}
	if _, err := i.rdb.Del(ctx, keys...).Result(); err != nil {
		log.Printf("cache invalidation failed for %v: %v", keys, err)
	}
}
