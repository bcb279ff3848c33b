package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/api/middleware"
	"github.com/tapshop/tapshop-backend/api/responses"
	"github.com/tapshop/tapshop-backend/api/validators"
	cartsvc "github.com/tapshop/tapshop-backend/internal/cart"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

type putCartRequest struct {
	Items []putCartLine `json:"items" validate:"dive"`
}

type putCartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=0"`
}

type cartResponse struct {
	SellerID uuid.UUID      `json:"seller_id"`
	Items    []cartsvc.Item `json:"items"`
	Total    int            `json:"total"`
	Count    int            `json:"count"`
}

func toCartResponse(c *cartsvc.Cart) cartResponse {
	items := c.Items
	if items == nil {
		items = []cartsvc.Item{}
	}
	return cartResponse{
		SellerID: c.SellerID,
		Items:    items,
		Total:    c.Total(),
		Count:    c.Count(),
	}
}

// CartGet returns the buyer's stored cart for a shop, revalidated against the
// live catalog.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerToken, sellerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart, err := svc.Get(r.Context(), buyerToken, sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(cart))
	}
}

// CartPut replaces the stored cart with the submitted lines.
func CartPut(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerToken, sellerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload putCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]cartsvc.Item, 0, len(payload.Items))
		for _, line := range payload.Items {
			items = append(items, cartsvc.Item{ProductID: line.ProductID, Quantity: line.Quantity})
		}

		cart, err := svc.Put(r.Context(), buyerToken, sellerID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(cart))
	}
}

// CartDelete drops the stored cart.
func CartDelete(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerToken, sellerID, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Clear(r.Context(), buyerToken, sellerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cleared"})
	}
}

func cartScope(r *http.Request) (string, uuid.UUID, error) {
	buyerToken := middleware.BuyerTokenFromContext(r.Context())
	if buyerToken == "" {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing buyer token")
	}
	sellerID, err := uuid.Parse(chi.URLParam(r, "sellerId"))
	if err != nil {
		return "", uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid seller id")
	}
	return buyerToken, sellerID, nil
}
