package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quickbite-dev/quickbite-backend/api/routes"
	"github.com/quickbite-dev/quickbite-backend/internal/cart"
	"github.com/quickbite-dev/quickbite-backend/internal/checkout"
	"github.com/quickbite-dev/quickbite-backend/internal/orders"
	"github.com/quickbite-dev/quickbite-backend/internal/payments"
	"github.com/quickbite-dev/quickbite-backend/internal/tracking"
	"github.com/quickbite-dev/quickbite-backend/internal/users"
	"github.com/quickbite-dev/quickbite-backend/pkg/config"
	"github.com/quickbite-dev/quickbite-backend/pkg/db"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/metrics"
	"github.com/quickbite-dev/quickbite-backend/pkg/migrate"
	"github.com/quickbite-dev/quickbite-backend/pkg/outbox"
	"github.com/quickbite-dev/quickbite-backend/pkg/redis"
	"github.com/quickbite-dev/quickbite-backend/pkg/square"
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cartStore, err := cart.NewRedisStore(redisClient, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cartStore)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	usersClient, err := users.NewClient(cfg.UserService)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service client", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	squareClient, err := square.NewClient(context.Background(), cfg.Square, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create square client", err)
		os.Exit(1)
	}
	gateway, err := payments.NewSquareGateway(squareClient, cfg.Square.Currency)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment gateway", err)
		os.Exit(1)
	}
	paymentsService, err := payments.NewService(payments.NewRepository(dbClient.DB()), ordersRepo, gateway, dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)
	trackingMetrics := metrics.NewTrackingMetrics(registry)

	checkoutService, err := checkout.NewService(cartService, ordersService, paymentsService, usersClient, checkoutMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	hub := tracking.NewHub(trackingMetrics, logg)
	feed, err := tracking.NewRedisFeed(context.Background(), redisClient, cfg.Tracking.Channel, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to subscribe to tracking channel", err)
		os.Exit(1)
	}
	defer func() {
		if err := feed.Close(); err != nil {
			logg.Error(context.Background(), "error closing tracking feed", err)
		}
	}()
	go func() {
		if err := hub.Run(context.Background(), feed); err != nil {
			logg.Error(context.Background(), "tracking hub stopped", err)
		}
	}()

	locationIngest, err := tracking.NewPublisher(redisClient, cfg.Tracking.Channel)
	if err != nil {
		logg.Error(context.Background(), "failed to create location publisher", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Cart:            cartService,
			Checkout:        checkoutService,
			Orders:          ordersService,
			Payments:        paymentsService,
			TrackingHub:     hub,
			LocationIngest:  locationIngest,
			TrackingMetrics: trackingMetrics,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
