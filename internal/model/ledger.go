package model

import (
	"time"

	"github.com/google/uuid"
)

// Ledger source types. SourceID carries the id of the originating row
// (check-in id, badge id, redemption id) as a string.
const (
	SourceCheckIn    = "check_in"
	SourceBadge      = "badge"
	SourceReward     = "reward"
	SourceAdjustment = "adjustment"
)

// PointsLedgerEntry is append-only: rows are never updated or deleted.
// For a user's entries in (OccurredAt, ID) order,
// BalanceAfter[i] = BalanceAfter[i-1] + Delta[i].
type PointsLedgerEntry struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_ledger_user_time,priority:1" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID" json:"-"`

	Delta        int    `gorm:"not null" json:"delta"`
	BalanceAfter int    `gorm:"not null" json:"balance_after"`
	SourceType   string `gorm:"size:30;not null;index" json:"source_type"`
	SourceID     string `gorm:"size:64" json:"source_id"`
	Description  string `gorm:"size:255" json:"description"`

	OccurredAt time.Time `gorm:"not null;index:idx_ledger_user_time,priority:2" json:"occurred_at"`
}

func (PointsLedgerEntry) TableName() string {
	return "points_ledger_entries"
}
