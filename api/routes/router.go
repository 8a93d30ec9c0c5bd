package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opentechiz/express-checkout/api/controllers"
	"github.com/opentechiz/express-checkout/api/middleware"
	"github.com/opentechiz/express-checkout/internal/express"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/pkg/config"
	"github.com/opentechiz/express-checkout/pkg/db"
	"github.com/opentechiz/express-checkout/pkg/logger"
	"github.com/opentechiz/express-checkout/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	checkoutService express.Service,
	tokenGate *express.TokenGate,
	sessions session.Store,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/checkout/express", func(r chi.Router) {
		r.Use(middleware.CheckoutSession())
		r.Post("/token", controllers.ExpressToken(tokenGate, sessions, logg))
		r.Post("/order", controllers.ExpressCreateOrder(checkoutService, sessions, logg))
		r.Post("/place", controllers.ExpressPlace(checkoutService, sessions, logg))
	})

	return r
}
