package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxSellerID   contextKey = "seller_id"
	ctxBuyerToken contextKey = "buyer_token"
)

// SellerIDFromContext returns the authenticated seller id, or uuid.Nil when
// the request is unauthenticated.
func SellerIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxSellerID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// BuyerTokenFromContext returns the anonymous buyer token carried by cart
// requests, empty when absent.
func BuyerTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxBuyerToken).(string); ok {
		return v
	}
	return ""
}

// WithSellerID injects the seller identifier into the context.
func WithSellerID(ctx context.Context, sellerID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSellerID, sellerID)
}

// WithBuyerToken injects the buyer token into the context for cart handlers.
func WithBuyerToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxBuyerToken, token)
}
