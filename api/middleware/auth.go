package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/api/responses"
	pkgauth "github.com/tapshop/tapshop-backend/pkg/auth"
	"github.com/tapshop/tapshop-backend/pkg/config"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

// Auth validates a seller bearer token and seeds the request context with the
// seller id.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.SellerID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing seller id"))
				return
			}

			ctx := WithSellerID(r.Context(), claims.SellerID)
			if logg != nil {
				ctx = logg.WithSellerID(ctx, claims.SellerID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
