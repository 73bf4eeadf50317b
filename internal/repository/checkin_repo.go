package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/model"
	"lakbay.com/lakbaypoints/pkg/apperror"
)

type CheckInRepository interface {
	// Create persists a check-in. A violation of the
	// (user, destination, check_in_date) unique index comes back as
	// apperror.ErrAlreadyCheckedInToday. The constraint is the canonical
	// daily-dedupe guard; the repository only translates it.
	Create(ctx context.Context, checkIn *model.CheckIn) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CheckIn, error)

	CountVerified(ctx context.Context, userID uuid.UUID) (int64, error)
	CountDistinctDestinations(ctx context.Context, userID uuid.UUID) (int64, error)
	CountDistinctCategories(ctx context.Context, userID uuid.UUID) (int64, error)
	CountAtDestinations(ctx context.Context, userID uuid.UUID, destinationIDs []uint) (int64, error)
	CountInCity(ctx context.Context, userID uuid.UUID, city string) (int64, error)
	CountInCategory(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error)
}

type checkInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) Create(ctx context.Context, checkIn *model.CheckIn) error {
	err := r.db.WithContext(ctx).Create(checkIn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrAlreadyCheckedInToday
	}
	return err
}

func (r *checkInRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	err := r.db.WithContext(ctx).
		Preload("Destination").Preload("Destination.Category").
		Where("user_id = ?", userID).
		Order("checked_in_at DESC").
		Limit(limit).Offset(offset).
		Find(&checkIns).Error
	return checkIns, err
}

func (r *checkInRepository) verified(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.CheckIn{}).
		Where("check_ins.user_id = ? AND check_ins.verified = ?", userID, true)
}

func (r *checkInRepository) CountVerified(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.verified(ctx, userID).Count(&count).Error
	return count, err
}

func (r *checkInRepository) CountDistinctDestinations(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.verified(ctx, userID).
		Distinct("check_ins.destination_id").
		Count(&count).Error
	return count, err
}

func (r *checkInRepository) CountDistinctCategories(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.verified(ctx, userID).
		Joins("JOIN destinations ON destinations.id = check_ins.destination_id").
		Distinct("destinations.category_id").
		Count(&count).Error
	return count, err
}

func (r *checkInRepository) CountAtDestinations(ctx context.Context, userID uuid.UUID, destinationIDs []uint) (int64, error) {
	if len(destinationIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.verified(ctx, userID).
		Where("check_ins.destination_id IN ?", destinationIDs).
		Count(&count).Error
	return count, err
}

func (r *checkInRepository) CountInCity(ctx context.Context, userID uuid.UUID, city string) (int64, error) {
	var count int64
	err := r.verified(ctx, userID).
		Joins("JOIN destinations ON destinations.id = check_ins.destination_id").
		Where("destinations.city = ?", city).
		Count(&count).Error
	return count, err
}

func (r *checkInRepository) CountInCategory(ctx context.Context, userID uuid.UUID, categoryID uint) (int64, error) {
	var count int64
	err := r.verified(ctx, userID).
		Joins("JOIN destinations ON destinations.id = check_ins.destination_id").
		Where("destinations.category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
