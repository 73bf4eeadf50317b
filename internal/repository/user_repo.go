package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lakbay.com/lakbaypoints/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// BalanceForUpdate reads total_points under a row lock. Only meaningful
	// inside a UnitOfWork transaction; it serializes concurrent appends to
	// the same user's ledger without touching anyone else's row.
	BalanceForUpdate(ctx context.Context, id uuid.UUID) (int, error)
	SetPoints(ctx context.Context, id uuid.UUID, totalPoints, level int) error
	TopByPoints(ctx context.Context, limit int) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Preload("Role").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) BalanceForUpdate(ctx context.Context, id uuid.UUID) (int, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "total_points").
		First(&user, "id = ?", id).Error
	if err != nil {
		return 0, err
	}
	return user.TotalPoints, nil
}

func (r *userRepository) SetPoints(ctx context.Context, id uuid.UUID, totalPoints, level int) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_points": totalPoints,
			"level":        level,
		}).Error
}

func (r *userRepository) TopByPoints(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Order("total_points DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}
