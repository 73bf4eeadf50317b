package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lakbay.com/lakbaypoints/internal/model"
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *model.Badge) error
	ActiveBadges(ctx context.Context) ([]model.Badge, error)

	ProgressByUser(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error)
	// UpsertProgress lazily creates the (user, badge) row and refreshes its
	// progress. The conflict update carries an is_earned = false guard so a
	// stale evaluation can never touch an earned row.
	UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, progress int) error
	// MarkEarned is the compare-and-set award write: it flips is_earned only
	// where it is still false and reports whether this caller won. The losing
	// side of a concurrent award sees false and must skip the point credit.
	MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, pointsAwarded int, earnedAt time.Time) (bool, error)
}

type badgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{db: db}
}

func (r *badgeRepository) Create(ctx context.Context, badge *model.Badge) error {
	return r.db.WithContext(ctx).Create(badge).Error
}

func (r *badgeRepository) ActiveBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&badges).Error
	return badges, err
}

func (r *badgeRepository) ProgressByUser(ctx context.Context, userID uuid.UUID) ([]model.UserBadgeProgress, error) {
	var progress []model.UserBadgeProgress
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("badge_id ASC").
		Find(&progress).Error
	return progress, err
}

func (r *badgeRepository) UpsertProgress(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, progress int) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"current_value": currentValue,
			"progress":      progress,
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("user_badge_progress.is_earned = ?", false),
		}},
	}).Create(&model.UserBadgeProgress{
		UserID:       userID,
		BadgeID:      badgeID,
		CurrentValue: currentValue,
		Progress:     progress,
	}).Error
}

func (r *badgeRepository) MarkEarned(ctx context.Context, userID uuid.UUID, badgeID uint, currentValue, pointsAwarded int, earnedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.UserBadgeProgress{}).
		Where("user_id = ? AND badge_id = ? AND is_earned = ?", userID, badgeID, false).
		Updates(map[string]interface{}{
			"is_earned":      true,
			"earned_at":      earnedAt,
			"progress":       100,
			"current_value":  currentValue,
			"points_awarded": pointsAwarded,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
