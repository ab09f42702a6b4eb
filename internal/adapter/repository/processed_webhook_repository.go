package repository

import (
	"context"
	"errors"

	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type processedWebhookRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProcessedWebhookRepository creates a new webhook dedup ledger
func NewProcessedWebhookRepository(db *gorm.DB, logger *zap.Logger) repository.ProcessedWebhookRepository {
	return &processedWebhookRepository{
		db:     db,
		logger: logger,
	}
}

func (r *processedWebhookRepository) Seen(ctx context.Context, idempotencyKey string) (bool, error) {
	var entry model.ProcessedWebhook
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", idempotencyKey).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, domainErrors.NewPersistenceError("check idempotency key", err)
	}
	return true, nil
}

func (r *processedWebhookRepository) Record(ctx context.Context, idempotencyKey string) error {
	entry := &model.ProcessedWebhook{IdempotencyKey: idempotencyKey}

	// Use ON CONFLICT to handle duplicate deliveries. Losing the insert
	// race to a concurrent delivery is a detected replay, not an error.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry).Error
	if err != nil {
		r.logger.Error("Failed to record idempotency key",
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err))
		return domainErrors.NewPersistenceError("record idempotency key", err)
	}
	return nil
}
