package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type donationRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB, logger *zap.Logger) repository.DonationRepository {
	return &donationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *donationRepository) Create(ctx context.Context, donation *model.Donation) error {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		r.logger.Error("Failed to create donation",
			zap.Int64("streamer_id", donation.StreamerID),
			zap.Error(err))
		return domainErrors.NewPersistenceError("create donation", err)
	}
	return nil
}

func (r *donationRepository) GetByID(ctx context.Context, id int64) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).First(&donation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewNotFoundError("donation", fmt.Sprintf("%d", id))
		}
		return nil, domainErrors.NewPersistenceError("get donation", err)
	}
	return &donation, nil
}

func (r *donationRepository) GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Donation, error) {
	var donation model.Donation
	err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.NewNotFoundError("donation", invoiceID)
		}
		return nil, domainErrors.NewPersistenceError("get donation by invoice", err)
	}
	return &donation, nil
}

func (r *donationRepository) ListByStreamer(ctx context.Context, streamerID int64, limit, offset int) ([]model.Donation, error) {
	var donations []model.Donation
	err := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&donations).Error
	if err != nil {
		return nil, domainErrors.NewPersistenceError("list donations", err)
	}
	return donations, nil
}

func (r *donationRepository) AttachInvoice(ctx context.Context, id int64, invoiceURL, invoiceKey, invoiceID string) error {
	err := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"invoice_url": invoiceURL,
			"invoice_key": invoiceKey,
			"invoice_id":  invoiceID,
			"status":      model.DonationStatusProcessing,
			"updated_at":  time.Now(),
		}).Error
	if err != nil {
		r.logger.Error("Failed to attach invoice",
			zap.Int64("donation_id", id),
			zap.String("invoice_id", invoiceID),
			zap.Error(err))
		return domainErrors.NewPersistenceError("attach invoice", err)
	}
	return nil
}

func (r *donationRepository) SetStatus(ctx context.Context, id int64, status model.DonationStatus) error {
	// Completed rows stay completed; a non-terminal target additionally
	// never overwrites failed. The guard is part of the statement so the
	// browser-redirect path cannot race the webhook path.
	query := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ?", id).
		Where("status <> ?", model.DonationStatusCompleted)
	if !status.Terminal() {
		query = query.Where("status <> ?", model.DonationStatusFailed)
	}

	err := query.Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}).Error
	if err != nil {
		r.logger.Error("Failed to set donation status",
			zap.Int64("donation_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return domainErrors.NewPersistenceError("set status", err)
	}
	return nil
}

func (r *donationRepository) TransitionByInvoiceID(ctx context.Context, invoiceID string, target model.DonationStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("invoice_id = ?", invoiceID).
		Where("status <> ?", model.DonationStatusCompleted).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		r.logger.Error("Failed to transition donation",
			zap.String("invoice_id", invoiceID),
			zap.String("target", string(target)),
			zap.Error(result.Error))
		return 0, domainErrors.NewPersistenceError("transition by invoice", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *donationRepository) CompleteByID(ctx context.Context, id int64) (int64, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Donation{}).
		Where("id = ?", id).
		Where("status <> ?", model.DonationStatusCompleted).
		Updates(map[string]interface{}{
			"status":       model.DonationStatusCompleted,
			"processed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		r.logger.Error("Failed to complete donation",
			zap.Int64("donation_id", id),
			zap.Error(result.Error))
		return 0, domainErrors.NewPersistenceError("complete donation", result.Error)
	}
	return result.RowsAffected, nil
}
