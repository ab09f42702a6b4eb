package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// QueueProducer pushes signed donation events onto the internal queue.
type QueueProducer interface {
	Push(ctx context.Context, envelope *queue.Envelope) error
}

// QueueDonationRequest is the alternate, gateway-less creation path:
// the donation is persisted pending and completion arrives through the
// internally signed queue instead of a webhook.
type QueueDonationRequest struct {
	StreamerID int64   `json:"streamer_id"`
	DonorName  string  `json:"donor_name"`
	Amount     float64 `json:"amount"`
	Message    string  `json:"message"`
}

// QueueDonationUsecase produces signed donation events.
type QueueDonationUsecase struct {
	donationRepo repository.DonationRepository
	producer     QueueProducer
	signer       *crypto.Signer
	logger       *zap.Logger
}

// NewQueueDonationUsecase creates a new QueueDonationUsecase
func NewQueueDonationUsecase(
	donationRepo repository.DonationRepository,
	producer QueueProducer,
	signer *crypto.Signer,
	logger *zap.Logger,
) *QueueDonationUsecase {
	return &QueueDonationUsecase{
		donationRepo: donationRepo,
		producer:     producer,
		signer:       signer,
		logger:       logger,
	}
}

// CreateQueuedDonation persists a pending donation and enqueues the
// signed completion event for the worker.
func (u *QueueDonationUsecase) CreateQueuedDonation(ctx context.Context, req *QueueDonationRequest) (int64, error) {
	if req.StreamerID <= 0 {
		return 0, domainErrors.NewValidationError("streamer_id", "missing")
	}
	if req.Amount <= 0 {
		return 0, domainErrors.NewValidationError("amount", "must be positive")
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	amount := decimal.NewFromFloat(req.Amount)
	donation := &model.Donation{
		StreamerID: req.StreamerID,
		DonorName:  donorName,
		Message:    req.Message,
		Currency:   "EGP",
		Amount:     amount,
		Status:     model.DonationStatusPending,
	}

	if err := u.donationRepo.Create(ctx, donation); err != nil {
		return 0, err
	}

	message := queue.DonationMessage{
		DonationID: donation.ID,
		StreamerID: donation.StreamerID,
		DonorName:  donorName,
		Amount:     amount,
		Message:    req.Message,
	}

	signature, err := u.signer.Sign(message)
	if err != nil {
		return donation.ID, err
	}

	envelope := &queue.Envelope{
		MessageID: uuid.NewString(),
		Donation:  message,
		Signature: signature,
	}
	if err := u.producer.Push(ctx, envelope); err != nil {
		return donation.ID, err
	}

	u.logger.Info("Donation queued",
		zap.String("message_id", envelope.MessageID),
		zap.Int64("donation_id", donation.ID),
		zap.Int64("streamer_id", donation.StreamerID))

	return donation.ID, nil
}
