package database

import (
	"github.com/streamtip/donation-service/internal/domain/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	err := db.AutoMigrate(
		&model.Donation{},
		&model.ProcessedWebhook{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates indexes that GORM doesn't handle automatically
func createCustomIndexes(db *gorm.DB) error {
	// Webhook and worker paths both filter on non-terminal rows
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_donations_open ON donations (invoice_id) WHERE status NOT IN ('completed', 'failed')`).Error; err != nil {
		return err
	}
	return nil
}
