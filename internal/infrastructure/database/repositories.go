package database

import (
	adapterRepo "github.com/streamtip/donation-service/internal/adapter/repository"
	domainRepo "github.com/streamtip/donation-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Donation         domainRepo.DonationRepository
	ProcessedWebhook domainRepo.ProcessedWebhookRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Donation:         adapterRepo.NewDonationRepository(db, logger),
		ProcessedWebhook: adapterRepo.NewProcessedWebhookRepository(db, logger),
	}
}
