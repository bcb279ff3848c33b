package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/api/middleware"
	"github.com/tapshop/tapshop-backend/api/responses"
	"github.com/tapshop/tapshop-backend/api/validators"
	sellersvc "github.com/tapshop/tapshop-backend/internal/sellers"
	pkgauth "github.com/tapshop/tapshop-backend/pkg/auth"
	"github.com/tapshop/tapshop-backend/pkg/config"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

type registerSellerRequest struct {
	ShopName string `json:"shop_name" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"required"`
}

type registerSellerResponse struct {
	Seller      *sellersvc.SellerDTO `json:"seller"`
	AccessToken string               `json:"access_token"`
}

type updateSellerRequest struct {
	ShopName        *string  `json:"shop_name" validate:"omitempty,max=120"`
	PromptPayID     *string  `json:"promptpay_id"`
	PickupAddress   *string  `json:"pickup_address"`
	PickupLat       *float64 `json:"pickup_lat"`
	PickupLng       *float64 `json:"pickup_lng"`
	ProfileImageURL *string  `json:"profile_image_url" validate:"omitempty,max=2048"`
	LineUserID      *string  `json:"line_user_id" validate:"omitempty,max=64"`
}

// PublicSellerRegister opens a shop and mints the dashboard access token.
func PublicSellerRegister(svc sellersvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerSellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := svc.Register(r.Context(), sellersvc.RegisterInput{
			ShopName: validators.SanitizeString(payload.ShopName, 120),
			Phone:    payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token, err := pkgauth.MintAccessToken(jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
			SellerID: seller.ID,
			Phone:    seller.Phone,
			JTI:      uuid.NewString(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, registerSellerResponse{
			Seller:      seller,
			AccessToken: token,
		})
	}
}

// SellerMe returns the authenticated seller's profile.
func SellerMe(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID := middleware.SellerIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller context missing"))
			return
		}

		seller, err := svc.GetByID(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}

// SellerUpdateMe applies partial settings changes to the authenticated
// seller.
func SellerUpdateMe(svc sellersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID := middleware.SellerIDFromContext(r.Context())
		if sellerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller context missing"))
			return
		}

		var payload updateSellerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		seller, err := svc.UpdateSettings(r.Context(), sellerID, sellersvc.UpdateSettingsInput{
			ShopName:        payload.ShopName,
			PromptPayID:     payload.PromptPayID,
			PickupAddress:   payload.PickupAddress,
			PickupLat:       payload.PickupLat,
			PickupLng:       payload.PickupLng,
			ProfileImageURL: payload.ProfileImageURL,
			LineUserID:      payload.LineUserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, seller)
	}
}
