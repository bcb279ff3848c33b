package orders

import (
	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/types"
)

// CreateInput is the checkout submission. Item names and prices are ignored;
// the snapshot is rebuilt from the live catalog so clients cannot price their
// own orders. DeliveryFee echoes the quote shown at checkout.
type CreateInput struct {
	SellerID     uuid.UUID   `json:"seller_id" validate:"required"`
	BuyerName    string      `json:"buyer_name" validate:"required"`
	BuyerPhone   string      `json:"buyer_phone" validate:"required"`
	BuyerAddress string      `json:"buyer_address" validate:"required"`
	BuyerLat     *float64    `json:"buyer_lat"`
	BuyerLng     *float64    `json:"buyer_lng"`
	Items        []LineInput `json:"items" validate:"required,min=1,dive"`
	DeliveryFee  int         `json:"delivery_fee" validate:"gte=0"`
}

// LineInput is one requested order line.
type LineInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

// CreateResult is what the buyer's checkout page receives.
type CreateResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
}

// StatusView is the public buyer-facing order status page payload. It leaks
// nothing about the seller beyond the shop the buyer already ordered from.
type StatusView struct {
	OrderNumber   string           `json:"order_number"`
	OrderStatus   string           `json:"order_status"`
	StatusDisplay string           `json:"status_display"`
	Items         types.OrderItems `json:"items"`
	Subtotal      int              `json:"subtotal"`
	DeliveryFee   int              `json:"delivery_fee"`
	Total         int              `json:"total"`
	ShareURL      *string          `json:"share_url,omitempty"`
}

// NewStatusView projects an order onto the public status page.
func NewStatusView(order *models.Order) *StatusView {
	return &StatusView{
		OrderNumber:   order.OrderNumber,
		OrderStatus:   order.OrderStatus.String(),
		StatusDisplay: order.OrderStatus.Display(),
		Items:         order.Items,
		Subtotal:      order.Subtotal,
		DeliveryFee:   order.DeliveryFee,
		Total:         order.Total,
		ShareURL:      order.ShareURL,
	}
}
