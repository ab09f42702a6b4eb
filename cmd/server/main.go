package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	handlers "github.com/streamtip/donation-service/internal/adapter/handler/http"
	"github.com/streamtip/donation-service/internal/config"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/infrastructure/database"
	httpServer "github.com/streamtip/donation-service/internal/infrastructure/http"
	"github.com/streamtip/donation-service/internal/infrastructure/provider/fawaterk"
	"github.com/streamtip/donation-service/internal/infrastructure/queue"
	"github.com/streamtip/donation-service/internal/logger"
	"github.com/streamtip/donation-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Initialize queue producer
	redisClient, err := queue.NewRedisClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	donationQueue := queue.NewDonationQueue(redisClient, cfg.Service.QueueName(), zapLogger)

	// One signer per trust domain
	webhookSigner, err := crypto.NewSigner(cfg.Service.Fawaterk.WebhookSecret)
	if err != nil {
		zapLogger.Fatal("Failed to initialize webhook signer", zap.Error(err))
	}
	queueSigner, err := crypto.NewSigner(cfg.Service.Queue.Secret)
	if err != nil {
		zapLogger.Fatal("Failed to initialize queue signer", zap.Error(err))
	}

	// Gateway client and usecases
	gateway := fawaterk.NewClient(cfg.Service.Fawaterk.APIBaseURL, cfg.Service.Fawaterk.APIKey, zapLogger)
	donationUsecase := usecase.NewDonationUsecase(repos.Donation, gateway, cfg.Service.BaseURL, zapLogger)
	queueUsecase := usecase.NewQueueDonationUsecase(repos.Donation, donationQueue, queueSigner, zapLogger)
	processor := usecase.NewWebhookProcessor(
		repos.Donation,
		repos.ProcessedWebhook,
		webhookSigner,
		&usecase.LogNotifier{Logger: zapLogger},
		zapLogger,
	)

	// Initialize HTTP server
	srv := httpServer.NewServer(cfg, zapLogger, &httpServer.Handlers{
		Payment:  handlers.NewPaymentHandler(donationUsecase, zapLogger),
		Webhook:  handlers.NewWebhookHandler(processor, zapLogger),
		Callback: handlers.NewCallbackHandler(repos.Donation, zapLogger),
		Donation: handlers.NewDonationHandler(queueUsecase, donationUsecase, zapLogger),
	})

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
