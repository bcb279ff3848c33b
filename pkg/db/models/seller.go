package models

import (
	"time"

	"github.com/google/uuid"
)

// Seller represents the canonical shop owner record. The slug is assigned
// once at onboarding and never changes; storefront URLs depend on it.
type Seller struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Phone           string    `gorm:"column:phone;not null" json:"phone"`
	ShopName        string    `gorm:"column:shop_name;not null" json:"shop_name"`
	ShopSlug        string    `gorm:"column:shop_slug;not null;uniqueIndex" json:"shop_slug"`
	PromptPayID     *string   `gorm:"column:promptpay_id" json:"promptpay_id"`
	PickupAddress   *string   `gorm:"column:pickup_address" json:"pickup_address"`
	PickupLat       *float64  `gorm:"column:pickup_lat" json:"pickup_lat"`
	PickupLng       *float64  `gorm:"column:pickup_lng" json:"pickup_lng"`
	ProfileImageURL *string   `gorm:"column:profile_image_url" json:"profile_image_url"`
	LineUserID      *string   `gorm:"column:line_user_id" json:"-"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// CanShip reports whether the seller has the pickup address required to book
// a delivery.
func (s *Seller) CanShip() bool {
	return s.PickupAddress != nil && *s.PickupAddress != ""
}
