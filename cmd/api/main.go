package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/colisdirect/colisdirect-backend/api/routes"
	"github.com/colisdirect/colisdirect-backend/internal/analytics"
	"github.com/colisdirect/colisdirect-backend/internal/auth"
	"github.com/colisdirect/colisdirect-backend/internal/bordereaux"
	"github.com/colisdirect/colisdirect-backend/internal/delivery"
	"github.com/colisdirect/colisdirect-backend/internal/deposits"
	"github.com/colisdirect/colisdirect-backend/internal/notifications"
	"github.com/colisdirect/colisdirect-backend/internal/users"
	"github.com/colisdirect/colisdirect-backend/pkg/auth/session"
	"github.com/colisdirect/colisdirect-backend/pkg/config"
	"github.com/colisdirect/colisdirect-backend/pkg/db"
	"github.com/colisdirect/colisdirect-backend/pkg/logger"
	"github.com/colisdirect/colisdirect-backend/pkg/migrate"
	"github.com/colisdirect/colisdirect-backend/pkg/outbox"
	"github.com/colisdirect/colisdirect-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	deliveryService, err := delivery.NewService(delivery.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	bordereauService, err := bordereaux.NewService(bordereaux.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create bordereaux service", err)
		os.Exit(1)
	}

	depositService, err := deposits.NewService(deposits.NewRepository(dbClient.DB()), dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create deposits service", err)
		os.Exit(1)
	}

	shippingRate, err := decimal.NewFromString(cfg.Delivery.ShippingRate)
	if err != nil {
		logg.Error(context.Background(), "invalid shipping rate", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()), shippingRate)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Users:        userRepo,
			Auth:         authService,
			Delivery:     deliveryService,
			Bordereaux:   bordereauService,
			Deposits:     depositService,
			Analytics:    analyticsService,
			Notification: notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
