package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opentechiz/express-checkout/api/routes"
	"github.com/opentechiz/express-checkout/internal/events"
	"github.com/opentechiz/express-checkout/internal/express"
	"github.com/opentechiz/express-checkout/internal/notifications"
	"github.com/opentechiz/express-checkout/internal/orders"
	"github.com/opentechiz/express-checkout/internal/paypal"
	"github.com/opentechiz/express-checkout/internal/quote"
	"github.com/opentechiz/express-checkout/internal/session"
	"github.com/opentechiz/express-checkout/internal/submission"
	"github.com/opentechiz/express-checkout/pkg/config"
	"github.com/opentechiz/express-checkout/pkg/db"
	"github.com/opentechiz/express-checkout/pkg/logger"
	"github.com/opentechiz/express-checkout/pkg/metrics"
	"github.com/opentechiz/express-checkout/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewStore(redisClient, cfg.Redis.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	quoteRepo := quote.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())
	reserver := orders.NewIncrementReserver(dbClient.DB())

	bus, err := events.NewOutboxBus(dbClient.DB(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event bus", err)
		os.Exit(1)
	}
	notifier, err := notifications.NewQueueSender(dbClient.DB(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create confirmation sender", err)
		os.Exit(1)
	}

	paypalClient := paypal.NewClient(cfg.PayPal)

	placer, err := orders.NewPlacer(orderRepo, paypalClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order placer", err)
		os.Exit(1)
	}

	checkoutUnit, err := submission.NewCheckoutUnit(dbClient, orderRepo, quoteRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout unit", err)
		os.Exit(1)
	}

	submissionSvc, err := submission.NewService(checkoutUnit, quoteRepo, placer, orderRepo, bus, reserver, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create submission service", err)
		os.Exit(1)
	}

	baseCheckout, err := express.NewStandardCheckout(quoteRepo, submissionSvc, notifier, cfg.Express, cfg.PayPal, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create standard checkout", err)
		os.Exit(1)
	}

	checkoutSvc, err := express.NewService(quoteRepo, orderRepo, submissionSvc, notifier, baseCheckout, cfg.Express, cfg.PayPal, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	tokenGate, err := express.NewTokenGate(paypalClient, orderRepo, checkoutSvc, bus, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create token gate", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, checkoutSvc, tokenGate, sessions),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
