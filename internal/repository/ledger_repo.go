package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/model"
)

type LedgerRepository interface {
	// Insert appends one entry. The table is append-only: nothing in the
	// codebase updates or deletes ledger rows.
	Insert(ctx context.Context, entry *model.PointsLedgerEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsLedgerEntry, error)
	// SumDeltas replays the full log; used by reconciliation only.
	SumDeltas(ctx context.Context, userID uuid.UUID) (int, error)
	// SumEarned totals only the positive deltas: lifetime points earned,
	// unaffected by redemptions.
	SumEarned(ctx context.Context, userID uuid.UUID) (int, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Insert(ctx context.Context, entry *model.PointsLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.PointsLedgerEntry, error) {
	var entries []model.PointsLedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("occurred_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) SumDeltas(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&model.PointsLedgerEntry{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

func (r *ledgerRepository) SumEarned(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := r.db.WithContext(ctx).Model(&model.PointsLedgerEntry{}).
		Select("COALESCE(SUM(delta), 0)").
		Where("user_id = ? AND delta > 0", userID).
		Scan(&sum).Error
	return sum, err
}
