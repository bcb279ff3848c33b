package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a seller JWT.
type AccessTokenPayload struct {
	SellerID uuid.UUID
	Phone    string
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to seller clients.
type AccessTokenClaims struct {
	SellerID uuid.UUID `json:"seller_id"`
	Phone    string    `json:"phone"`
	jwt.RegisteredClaims
}
