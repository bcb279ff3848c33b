package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/api/responses"
	"github.com/tapshop/tapshop-backend/api/validators"
	deliverysvc "github.com/tapshop/tapshop-backend/internal/delivery"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

type quoteRequest struct {
	SellerID     uuid.UUID `json:"seller_id" validate:"required"`
	BuyerAddress string    `json:"buyer_address" validate:"required"`
	BuyerLat     *float64  `json:"buyer_lat"`
	BuyerLng     *float64  `json:"buyer_lng"`
}

// PublicDeliveryQuote prices a delivery for the checkout page.
func PublicDeliveryQuote(svc deliverysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), deliverysvc.QuoteInput{
			SellerID:     payload.SellerID,
			BuyerAddress: payload.BuyerAddress,
			BuyerLat:     payload.BuyerLat,
			BuyerLng:     payload.BuyerLng,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
