package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/enums"
	"github.com/tapshop/tapshop-backend/pkg/types"
)

// Order is the buyer-facing purchase record. Items are a snapshot taken at
// creation time; later product edits never change an existing order. All
// money fields are whole baht.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex" json:"order_number"`
	SellerID      uuid.UUID           `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	BuyerName     string              `gorm:"column:buyer_name;not null" json:"buyer_name"`
	BuyerPhone    string              `gorm:"column:buyer_phone;not null" json:"buyer_phone"`
	BuyerAddress  string              `gorm:"column:buyer_address;not null" json:"buyer_address"`
	BuyerLat      *float64            `gorm:"column:buyer_lat" json:"buyer_lat"`
	BuyerLng      *float64            `gorm:"column:buyer_lng" json:"buyer_lng"`
	Items         types.OrderItems    `gorm:"column:items;type:jsonb;not null" json:"items"`
	Subtotal      int                 `gorm:"column:subtotal;not null" json:"subtotal"`
	DeliveryFee   int                 `gorm:"column:delivery_fee;not null" json:"delivery_fee"`
	Total         int                 `gorm:"column:total;not null" json:"total"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null" json:"payment_method"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null" json:"payment_status"`
	OrderStatus   enums.OrderStatus   `gorm:"column:order_status;not null" json:"order_status"`
	CarrierRef    *string             `gorm:"column:carrier_ref" json:"carrier_ref,omitempty"`
	ShareURL      *string             `gorm:"column:share_url" json:"share_url,omitempty"`
	DeliveryCost  *int                `gorm:"column:delivery_cost" json:"delivery_cost,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// CODAmount is what the driver collects from the buyer on handoff. The
// product total is paid up front by transfer, so only the delivery fee moves
// as cash.
func (o *Order) CODAmount() int {
	return o.DeliveryFee
}
