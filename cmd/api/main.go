// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/catalog"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.WithField("environment", cfg.App.Environment).Infof("Starting %s v%s", cfg.App.Name, cfg.App.Version)

	db, err := postgres.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewConnection(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStartup()

	if err := db.Health(startupCtx); err != nil {
		appLogger.WithError(err).Fatal("Database health check failed")
	}

	passwords := auth.NewPasswordManager(cfg)
	jwtManager := auth.NewJWTManager(cfg)
	users := user.NewService(db.GetDB(), passwords, appLogger)

	migration := postgres.NewMigration(db.GetDB(), users, appLogger)
	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.WithError(err).Fatal("Database migration failed")
	}
	if err := migration.CreateIndexes(); err != nil {
		appLogger.WithError(err).Warn("Index creation failed")
	}

	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(startupCtx); err != nil {
			appLogger.WithError(err).Warn("Data seeding failed")
		}
		if err := migration.GetTableInfo(); err != nil {
			appLogger.WithError(err).Warn("Table info unavailable")
		}
	}

	// Domain services
	catalogService := catalog.NewService(db.GetDB(), redisClient.GetClient(), cfg.Catalog.CacheTTL, appLogger)
	pricer := pricing.NewResolver(catalogService)
	cartService := cart.NewService(db.GetDB(), pricer, appLogger)
	paymentService := payment.NewService(cfg, payment.NewRazorpayGateway(cfg.Payment), appLogger)
	notifier := email.NewEmailService(cfg, users, appLogger)
	orderService := order.NewService(db.GetDB(), cfg, catalogService, paymentService, notifier, appLogger)

	if !cfg.PaymentConfigured() {
		appLogger.Warn("Razorpay credentials missing; payment endpoints will answer 503")
	}

	server := http.NewServer(
		cfg,
		appLogger,
		redisClient.GetClient(),
		jwtManager,
		&routes.Handlers{
			Cart:       handlers.NewCartHandler(cartService),
			Order:      handlers.NewOrderHandler(orderService, pdf.NewService(cfg)),
			Payment:    handlers.NewPaymentHandler(paymentService),
			AdminOrder: handlers.NewAdminOrderHandler(orderService),
		},
		handlers.NewHealthHandler(cfg, map[string]handlers.HealthChecker{
			"database": db,
			"redis":    redisClient,
		}),
	)

	go func() {
		if err := server.Start(); err != nil {
			appLogger.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	appLogger.Info("Server shutdown completed")
}
