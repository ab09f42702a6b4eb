package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streamtip/donation-service/internal/config"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/infrastructure/database"
	"github.com/streamtip/donation-service/internal/infrastructure/queue"
	"github.com/streamtip/donation-service/internal/logger"
	"github.com/streamtip/donation-service/internal/worker"
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

	repos := database.NewRepositories(db, zapLogger)

	// Initialize queue consumer
	redisClient, err := queue.NewRedisClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	donationQueue := queue.NewDonationQueue(redisClient, cfg.Service.QueueName(), zapLogger)

	queueSigner, err := crypto.NewSigner(cfg.Service.Queue.Secret)
	if err != nil {
		zapLogger.Fatal("Failed to initialize queue signer", zap.Error(err))
	}

	// Cancel the consume loop on shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := worker.New(donationQueue, repos.Donation, queueSigner, zapLogger)
	if err := w.Run(ctx); err != nil {
		zapLogger.Fatal("Worker terminated", zap.Error(err))
	}

	zapLogger.Info("Worker shut down successfully")
}
