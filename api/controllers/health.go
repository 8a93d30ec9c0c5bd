package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/opentechiz/express-checkout/api/responses"
	"github.com/opentechiz/express-checkout/pkg/config"
	pkgerrors "github.com/opentechiz/express-checkout/pkg/errors"
	"github.com/opentechiz/express-checkout/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-App-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-App-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		if db != nil {
			checks["db"] = "ok"
			if err := db.Ping(ctx); err != nil {
				checks["db"] = "unreachable"
				healthy = false
			}
		}
		if cache != nil {
			checks["redis"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				checks["redis"] = "unreachable"
				healthy = false
			}
		}

		if !healthy {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
