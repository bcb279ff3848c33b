package middleware

import (
	"net/http"
	"strings"

	"github.com/tapshop/tapshop-backend/api/responses"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

const buyerTokenHeader = "X-Buyer-Token"

const maxBuyerTokenLength = 128

// BuyerToken requires the anonymous cart token header on public cart
// endpoints. The token is an opaque client-generated id; the server only
// namespaces cart storage with it.
func BuyerToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(buyerTokenHeader))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing buyer token header"))
				return
			}
			if len(token) > maxBuyerTokenLength || strings.ContainsAny(token, " :\n") {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "malformed buyer token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithBuyerToken(r.Context(), token)))
		})
	}
}
