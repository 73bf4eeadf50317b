// Package event carries the typed notifications the engine emits after a
// committed state change. Subscribers (the redis cache layer) react to them;
// the engine's correctness never depends on a subscriber being reachable.
package event

import (
	"context"

	"github.com/google/uuid"
)

type LedgerChanged struct {
	UserID  uuid.UUID
	Balance int
}

type BadgeAwarded struct {
	UserID  uuid.UUID
	BadgeID uint
	Points  int
}

type Publisher interface {
	PublishLedgerChanged(ctx context.Context, e LedgerChanged)
	PublishBadgeAwarded(ctx context.Context, e BadgeAwarded)
}

// NopPublisher is used in tests and redis-less deployments.
type NopPublisher struct{}

func (NopPublisher) PublishLedgerChanged(context.Context, LedgerChanged) {}
func (NopPublisher) PublishBadgeAwarded(context.Context, BadgeAwarded)  {}
