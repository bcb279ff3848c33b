package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tapshop/tapshop-backend/api/responses"
	productsvc "github.com/tapshop/tapshop-backend/internal/products"
	sellersvc "github.com/tapshop/tapshop-backend/internal/sellers"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

type shopView struct {
	Shop     *sellersvc.PublicSellerDTO `json:"shop"`
	Products []productsvc.ProductDTO    `json:"products"`
}

// PublicShop serves the storefront: the shop profile plus its active
// products.
func PublicShop(sellers sellersvc.Service, products productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		shop, err := sellers.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listing, err := products.ListStorefront(r.Context(), shop.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, shopView{Shop: shop, Products: listing})
	}
}
