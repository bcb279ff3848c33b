package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a listing owned by a seller. Prices are stored in whole baht.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID    uuid.UUID `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description *string   `gorm:"column:description" json:"description"`
	Price       int       `gorm:"column:price;not null" json:"price"`
	ImageURL    *string   `gorm:"column:image_url" json:"image_url"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
