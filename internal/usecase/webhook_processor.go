package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"github.com/streamtip/donation-service/internal/infrastructure/crypto"
	"github.com/streamtip/donation-service/internal/infrastructure/provider/fawaterk"
	"go.uber.org/zap"
)

// freshnessWindow bounds how old a timestamped webhook may be.
const freshnessWindow = 5 * time.Minute

// GatewayWebhook is the gateway-defined callback body.
type GatewayWebhook struct {
	ID            int64                   `json:"id"`
	InvoiceID     int64                   `json:"invoice_id"`
	InvoiceKey    string                  `json:"invoice_key"`
	Status        string                  `json:"status"`
	Amount        float64                 `json:"amount"`
	Currency      string                  `json:"currency"`
	PaymentMethod string                  `json:"payment_method"`
	Payload       fawaterk.InvoicePayload `json:"payload"`
}

// WebhookRequest is a parsed inbound delivery: the raw body plus the
// trust-relevant headers.
type WebhookRequest struct {
	RawBody        []byte
	Signature      string
	Timestamp      string
	IdempotencyKey string
}

// WebhookResult describes what Process did with a delivery.
type WebhookResult struct {
	Applied   bool
	Duplicate bool
	Message   string
}

// Notifier delivers a best-effort "you got a donation" signal to the
// streamer. Failures are logged, never surfaced.
type Notifier interface {
	NotifyDonation(ctx context.Context, payload fawaterk.InvoicePayload) error
}

// LogNotifier is the default Notifier; it only records the event.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n *LogNotifier) NotifyDonation(ctx context.Context, payload fawaterk.InvoicePayload) error {
	n.Logger.Info("Streamer donation notification",
		zap.Int64("streamer_id", payload.StreamerID),
		zap.Int64("donation_id", payload.DonationID),
		zap.String("donor_name", payload.DonorName))
	return nil
}

// WebhookProcessor applies gateway callbacks to the donation store. Both
// the paid and the failed endpoints run through the single Process
// transition so the "never regress from completed" invariant is enforced
// in one place.
type WebhookProcessor struct {
	donationRepo repository.DonationRepository
	ledger       repository.ProcessedWebhookRepository
	signer       *crypto.Signer
	notifier     Notifier
	logger       *zap.Logger

	// now is swappable for freshness tests
	now func() time.Time
}

// NewWebhookProcessor creates a new WebhookProcessor
func NewWebhookProcessor(
	donationRepo repository.DonationRepository,
	ledger repository.ProcessedWebhookRepository,
	signer *crypto.Signer,
	notifier Notifier,
	logger *zap.Logger,
) *WebhookProcessor {
	return &WebhookProcessor{
		donationRepo: donationRepo,
		ledger:       ledger,
		signer:       signer,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// Process verifies and applies one webhook delivery, transitioning the
// donation toward the given terminal status.
//
// Error taxonomy maps to the response the handler must give the
// gateway: ValidationError → 400, AuthError → 401, PersistenceError →
// 500. A nil error always means "acknowledge with 200", including
// replays and donations that no longer exist locally.
func (p *WebhookProcessor) Process(ctx context.Context, req *WebhookRequest, target model.DonationStatus) (*WebhookResult, error) {
	if err := p.checkFreshness(req.Timestamp); err != nil {
		return nil, err
	}

	if req.Signature == "" {
		p.logger.Warn("Webhook without signature")
		return nil, domainErrors.NewAuthError("missing signature")
	}
	if !p.signer.VerifyBytes(req.RawBody, req.Signature) {
		p.logger.Warn("Invalid webhook signature",
			zap.String("received", truncate(req.Signature, 10)))
		return nil, domainErrors.NewAuthError("invalid signature")
	}

	var payload GatewayWebhook
	if err := json.Unmarshal(req.RawBody, &payload); err != nil {
		return nil, domainErrors.NewValidationError("body", "malformed JSON")
	}

	if err := validateWebhook(&payload, target); err != nil {
		p.logger.Warn("Webhook failed structural validation",
			zap.Int64("invoice_id", payload.InvoiceID),
			zap.Error(err))
		return nil, err
	}

	invoiceID := strconv.FormatInt(payload.InvoiceID, 10)
	idempotencyKey := p.idempotencyKey(req, &payload, invoiceID)

	seen, err := p.ledger.Seen(ctx, idempotencyKey)
	if err != nil {
		// The ledger being unreachable must not block a legitimate
		// delivery; the conditional update below is still idempotent.
		p.logger.Error("Idempotency check failed", zap.Error(err))
	} else if seen {
		p.logger.Warn("Webhook already processed",
			zap.String("idempotency_key", idempotencyKey))
		return &WebhookResult{Duplicate: true, Message: "Already processed"}, nil
	}

	p.logger.Info("Webhook received",
		zap.Int64("invoice_id", payload.InvoiceID),
		zap.String("status", payload.Status),
		zap.Float64("amount", payload.Amount),
		zap.String("target", string(target)))

	expectedStatus := "paid"
	if target == model.DonationStatusFailed {
		expectedStatus = "failed"
	}
	if payload.Status != expectedStatus {
		// Not the status this endpoint handles; acknowledge so the
		// gateway does not retry it here.
		return &WebhookResult{Message: "Webhook received"}, nil
	}

	affected, err := p.donationRepo.TransitionByInvoiceID(ctx, invoiceID, target)
	if err != nil {
		return nil, err
	}

	if affected == 0 {
		return p.handleNoTransition(ctx, invoiceID, idempotencyKey)
	}

	p.logger.Info("Donation transitioned via webhook",
		zap.String("invoice_id", invoiceID),
		zap.String("status", string(target)))

	p.recordKey(ctx, idempotencyKey)

	if target == model.DonationStatusCompleted {
		if err := p.notifier.NotifyDonation(ctx, payload.Payload); err != nil {
			p.logger.Error("Streamer notification failed", zap.Error(err))
		}
	}

	return &WebhookResult{Applied: true, Message: "Webhook received"}, nil
}

// handleNoTransition distinguishes "already completed" (record the key,
// acknowledge) from "no such donation" (acknowledge so the gateway stops
// retrying for a row that no longer exists locally).
func (p *WebhookProcessor) handleNoTransition(ctx context.Context, invoiceID, idempotencyKey string) (*WebhookResult, error) {
	donation, err := p.donationRepo.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		var notFound *domainErrors.NotFoundError
		if errors.As(err, &notFound) {
			p.logger.Warn("Webhook for unknown donation",
				zap.String("invoice_id", invoiceID))
			return &WebhookResult{Message: "Webhook received"}, nil
		}
		return nil, err
	}

	if donation.Status == model.DonationStatusCompleted {
		p.logger.Warn("Donation already completed",
			zap.String("invoice_id", invoiceID))
		p.recordKey(ctx, idempotencyKey)
		return &WebhookResult{Duplicate: true, Message: "Already completed"}, nil
	}

	return &WebhookResult{Message: "Webhook received"}, nil
}

func (p *WebhookProcessor) checkFreshness(timestamp string) error {
	if timestamp == "" {
		// No timestamp header, no freshness check. Known weakening kept
		// for compatibility with deliveries that omit the header.
		return nil
	}
	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domainErrors.NewValidationError("timestamp", "not a unix millisecond value")
	}
	age := p.now().Sub(time.UnixMilli(ms))
	if age > freshnessWindow {
		p.logger.Warn("Webhook too old",
			zap.String("timestamp", timestamp),
			zap.Duration("age", age))
		return domainErrors.NewValidationError("timestamp", "webhook too old")
	}
	return nil
}

func (p *WebhookProcessor) idempotencyKey(req *WebhookRequest, payload *GatewayWebhook, invoiceID string) string {
	if req.IdempotencyKey != "" {
		return req.IdempotencyKey
	}
	if payload.ID != 0 {
		return strconv.FormatInt(payload.ID, 10)
	}
	return invoiceID
}

func (p *WebhookProcessor) recordKey(ctx context.Context, idempotencyKey string) {
	if err := p.ledger.Record(ctx, idempotencyKey); err != nil {
		// Bookkeeping only; the conditional update already guarantees
		// the transition cannot double-apply.
		p.logger.Error("Failed to record idempotency key",
			zap.String("idempotency_key", idempotencyKey),
			zap.Error(err))
	}
}

func validateWebhook(payload *GatewayWebhook, target model.DonationStatus) error {
	if payload.InvoiceID == 0 {
		return domainErrors.NewValidationError("invoice_id", "missing")
	}
	if payload.Status == "" {
		return domainErrors.NewValidationError("status", "missing")
	}
	if target == model.DonationStatusCompleted {
		if payload.Amount <= 0 {
			return domainErrors.NewValidationError("amount", "must be positive")
		}
		if payload.Currency == "" {
			return domainErrors.NewValidationError("currency", "missing")
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
