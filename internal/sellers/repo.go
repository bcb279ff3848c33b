package sellers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
)

// Repository handles seller persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to seller operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new seller row.
func (r *Repository) Create(ctx context.Context, seller *models.Seller) (*models.Seller, error) {
	if seller == nil {
		return nil, fmt.Errorf("seller is required")
	}
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		return nil, err
	}
	return seller, nil
}

// FindByID loads a seller by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindByPhone loads a seller by its normalized phone number.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// FindBySlug loads a seller by its storefront slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).
		Where("shop_slug = ?", slug).
		First(&seller).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

// Update saves the provided seller.
func (r *Repository) Update(ctx context.Context, seller *models.Seller) error {
	if seller == nil {
		return fmt.Errorf("seller is required")
	}
	return r.db.WithContext(ctx).Save(seller).Error
}
