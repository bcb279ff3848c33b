package controllers

import (
	"net/http"

	"github.com/tapshop/tapshop-backend/api/responses"
	"github.com/tapshop/tapshop-backend/pkg/config"
	"github.com/tapshop/tapshop-backend/pkg/db"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/logger"
	"github.com/tapshop/tapshop-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TapShop-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness once the hard dependencies answer. Redis is
// optional at runtime (carts degrade, rate limits open up) but a dead
// connection still fails readiness so a bad rollout is caught early.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TapShop-Env", cfg.App.Env)

		checks := map[string]string{}
		var failed bool

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				checks["postgres"] = err.Error()
				failed = true
			} else {
				checks["postgres"] = "ok"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				failed = true
			} else {
				checks["redis"] = "ok"
			}
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "not ready").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
