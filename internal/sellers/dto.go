package sellers

import (
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
)

// SellerDTO is the seller profile returned to the dashboard.
type SellerDTO struct {
	ID              uuid.UUID `json:"id"`
	Phone           string    `json:"phone"`
	ShopName        string    `json:"shop_name"`
	ShopSlug        string    `json:"shop_slug"`
	PromptPayID     *string   `json:"promptpay_id,omitempty"`
	PickupAddress   *string   `json:"pickup_address,omitempty"`
	PickupLat       *float64  `json:"pickup_lat,omitempty"`
	PickupLng       *float64  `json:"pickup_lng,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	LineLinked      bool      `json:"line_linked"`
	CreatedAt       time.Time `json:"created_at"`
}

// PublicSellerDTO is the storefront view. PromptPayID is public because the
// checkout page renders the transfer QR from it; everything else about the
// seller stays private.
type PublicSellerDTO struct {
	ID              uuid.UUID `json:"id"`
	ShopName        string    `json:"shop_name"`
	ShopSlug        string    `json:"shop_slug"`
	PromptPayID     *string   `json:"promptpay_id,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
}

// RegisterInput captures the data required to open a shop.
type RegisterInput struct {
	ShopName string
	Phone    string
}

// UpdateSettingsInput captures the mutable seller settings. Nil fields are
// left untouched.
type UpdateSettingsInput struct {
	ShopName        *string
	PromptPayID     *string
	PickupAddress   *string
	PickupLat       *float64
	PickupLng       *float64
	ProfileImageURL *string
	LineUserID      *string
}

func toDTO(seller *models.Seller) *SellerDTO {
	return &SellerDTO{
		ID:              seller.ID,
		Phone:           seller.Phone,
		ShopName:        seller.ShopName,
		ShopSlug:        seller.ShopSlug,
		PromptPayID:     seller.PromptPayID,
		PickupAddress:   seller.PickupAddress,
		PickupLat:       seller.PickupLat,
		PickupLng:       seller.PickupLng,
		ProfileImageURL: seller.ProfileImageURL,
		LineLinked:      seller.LineUserID != nil && *seller.LineUserID != "",
		CreatedAt:       seller.CreatedAt,
	}
}

// ToPublicDTO maps a seller row to its storefront representation.
func ToPublicDTO(seller *models.Seller) *PublicSellerDTO {
	return &PublicSellerDTO{
		ID:              seller.ID,
		ShopName:        seller.ShopName,
		ShopSlug:        seller.ShopSlug,
		PromptPayID:     seller.PromptPayID,
		ProfileImageURL: seller.ProfileImageURL,
	}
}
