package delivery

import "github.com/google/uuid"

// QuoteInput asks for a buyer-facing delivery price to a destination.
type QuoteInput struct {
	SellerID     uuid.UUID
	BuyerAddress string
	BuyerLat     *float64
	BuyerLng     *float64
}

// QuoteResult is what checkout shows the buyer.
type QuoteResult struct {
	DeliveryFee int    `json:"delivery_fee"`
	QuotationID string `json:"quotation_id"`
	IsMock      bool   `json:"is_mock"`
}

// ShipResult reports the outcome of booking a confirmed order out for
// delivery. Profit is the checkout-time fee minus the fresh carrier cost and
// may be negative.
type ShipResult struct {
	OrderID      uuid.UUID `json:"order_id"`
	CarrierRef   string    `json:"lalamove_order_id,omitempty"`
	ShareURL     *string   `json:"share_link,omitempty"`
	IsMock       bool      `json:"is_mock,omitempty"`
	DeliveryFee  int       `json:"delivery_fee"`
	DeliveryCost int       `json:"delivery_cost"`
	Profit       int       `json:"profit"`
}
