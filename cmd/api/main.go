package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"podm-backend/internal/client"
	"podm-backend/internal/config"
	"podm-backend/internal/observability"
	"podm-backend/internal/repository"
	"podm-backend/internal/server"
	"podm-backend/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	db := client.InitDBClient(cfg.DatabaseURL)
	stripeClient := client.NewStripeClient(&cfg.Stripe)

	userRepo := repository.NewUserRepository(db)
	tierRepo := repository.NewTierRepository(db)
	contentRepo := repository.NewContentRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	txnRepo := repository.NewTransactionRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	billingService := service.NewBillingService(
		stripeClient, &cfg.Billing,
		userRepo,
		contentRepo,
		messageRepo,
		txnRepo,
		webhookEventRepo,
		logger,
	)
	subscriptionService := service.NewSubscriptionService(
		stripeClient, &cfg.Billing,
		userRepo,
		tierRepo,
		subRepo,
		txnRepo,
		logger,
	)
	messageService := service.NewMessageService(userRepo, subRepo, messageRepo, logger)
	contentService := service.NewContentService(contentRepo)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	srv := server.NewServer(
		cfg.Auth.JWTSecret,
		billingService,
		subscriptionService,
		messageService,
		contentService,
	)

	logger.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	logger.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		os.Exit(1)
	}
}
