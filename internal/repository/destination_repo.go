package repository

import (
	"context"

	"gorm.io/gorm"
	"lakbay.com/lakbaypoints/internal/model"
)

type DestinationRepository interface {
	Create(ctx context.Context, destination *model.Destination) error
	FindByID(ctx context.Context, id uint) (*model.Destination, error)
	FindAll(ctx context.Context, city string, categoryID uint) ([]*model.Destination, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	FindAllCategories(ctx context.Context) ([]*model.Category, error)
}

type destinationRepository struct {
	db *gorm.DB
}

func NewDestinationRepository(db *gorm.DB) DestinationRepository {
	return &destinationRepository{db: db}
}

func (r *destinationRepository) Create(ctx context.Context, destination *model.Destination) error {
	return r.db.WithContext(ctx).Create(destination).Error
}

func (r *destinationRepository) FindByID(ctx context.Context, id uint) (*model.Destination, error) {
	var destination model.Destination
	if err := r.db.WithContext(ctx).Preload("Category").First(&destination, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &destination, nil
}

func (r *destinationRepository) FindAll(ctx context.Context, city string, categoryID uint) ([]*model.Destination, error) {
	var destinations []*model.Destination
	query := r.db.WithContext(ctx).Preload("Category").Where("active = ?", true)

	if city != "" {
		query = query.Where("city ILIKE ?", city)
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}

	if err := query.Order("name ASC").Find(&destinations).Error; err != nil {
		return nil, err
	}
	return destinations, nil
}

func (r *destinationRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *destinationRepository) FindAllCategories(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
