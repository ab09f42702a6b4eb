package worker

import (
	"context"
	"errors"

	"github.com/streamtip/donation-service/internal/domain/repository"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/infrastructure/queue"
	"go.uber.org/zap"
)

// QueueConsumer pops signed donation events off the internal queue,
// blocking until one arrives or the context is cancelled.
type QueueConsumer interface {
	Pop(ctx context.Context) (*queue.Envelope, error)
}

// Worker is the single long-running consumer of the donation queue. A
// message with a bad signature is discarded; a message whose update
// fails is logged and dropped, not redelivered. At-most-one effective
// application is the intended delivery guarantee.
type Worker struct {
	consumer     QueueConsumer
	donationRepo repository.DonationRepository
	signer       *crypto.Signer
	logger       *zap.Logger
}

// New creates a donation queue worker.
func New(
	consumer QueueConsumer,
	donationRepo repository.DonationRepository,
	signer *crypto.Signer,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		consumer:     consumer,
		donationRepo: donationRepo,
		signer:       signer,
		logger:       logger,
	}
}

// Run consumes the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Donation worker started")

	for {
		envelope, err := w.consumer.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("Donation worker stopping")
				return nil
			}
			w.logger.Error("Failed to pop queue message", zap.Error(err))
			continue
		}

		w.handle(ctx, envelope)
	}
}

func (w *Worker) handle(ctx context.Context, envelope *queue.Envelope) {
	if !w.signer.Verify(envelope.Donation, envelope.Signature) {
		w.logger.Warn("Invalid queue message signature, discarding",
			zap.Int64("donation_id", envelope.Donation.DonationID))
		return
	}

	w.logger.Info("Processing queued donation",
		zap.String("message_id", envelope.MessageID),
		zap.Int64("donation_id", envelope.Donation.DonationID),
		zap.Int64("streamer_id", envelope.Donation.StreamerID),
		zap.String("amount", envelope.Donation.Amount.String()))

	affected, err := w.donationRepo.CompleteByID(ctx, envelope.Donation.DonationID)
	if err != nil {
		w.logger.Error("Failed to complete queued donation",
			zap.Int64("donation_id", envelope.Donation.DonationID),
			zap.Error(err))
		return
	}

	if affected == 0 {
		w.logger.Warn("Queued donation already completed or missing",
			zap.Int64("donation_id", envelope.Donation.DonationID))
		return
	}

	w.logger.Info("Donation completed",
		zap.Int64("donation_id", envelope.Donation.DonationID))
}
