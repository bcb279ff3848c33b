package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery records the carrier booking made when an order ships. QuotedFee is
// what the buyer paid at checkout, ActualCost is what the carrier quoted at
// booking time; Profit is their difference and can be negative when the
// market moved between checkout and shipping.
type Delivery struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID         uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex" json:"order_id"`
	CarrierRef      string    `gorm:"column:carrier_ref;not null" json:"lalamove_order_id"`
	Status          string    `gorm:"column:status;not null" json:"status"`
	PickupAddress   string    `gorm:"column:pickup_address;not null" json:"pickup_address"`
	DeliveryAddress string    `gorm:"column:delivery_address;not null" json:"delivery_address"`
	QuotedFee       int       `gorm:"column:quoted_fee;not null" json:"quoted_fee"`
	ActualCost      int       `gorm:"column:actual_cost;not null" json:"actual_cost"`
	Profit          int       `gorm:"column:profit;not null" json:"profit"`
	ShareURL        *string   `gorm:"column:share_url" json:"share_link"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
