package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"github.com/streamtip/donation-service/internal/infrastructure/provider/fawaterk"
	"go.uber.org/zap"
)

// PaymentGateway is the outbound contract with the payment provider.
type PaymentGateway interface {
	ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)
	CreateInvoice(ctx context.Context, req *fawaterk.InvoiceRequest) (*fawaterk.Invoice, error)
}

// CreateDonationRequest is the donation form submission.
type CreateDonationRequest struct {
	FirstName        string  `json:"firstName" validate:"required"`
	Description      string  `json:"description"`
	Currency         string  `json:"currency" validate:"required"`
	Amount           float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod    string  `json:"paymentMethod" validate:"required"`
	PaymentMethodID  int     `json:"paymentMethodId" validate:"required"`
	Redirect         bool    `json:"redirect"`
	WalletNumber     string  `json:"walletNumber"`
	StreamerID       int64   `json:"streamerId" validate:"required"`
	StreamerUsername string  `json:"streamerUsername"`
	StreamerName     string  `json:"streamerName"`
	StreamerEmail    string  `json:"streamerEmail"`
	StreamerPhone    string  `json:"streamerPhone"`
}

// CreateDonationResult carries what the client needs to send the payer
// to the gateway's hosted page.
type CreateDonationResult struct {
	DonationID int64  `json:"donationId"`
	PaymentURL string `json:"paymentUrl"`
	InvoiceKey string `json:"invoiceKey"`
	InvoiceID  int64  `json:"invoiceId"`
}

// DonationUsecase owns the donation creation flow and read paths.
type DonationUsecase struct {
	donationRepo repository.DonationRepository
	gateway      PaymentGateway
	baseURL      string
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewDonationUsecase creates a new DonationUsecase
func NewDonationUsecase(
	donationRepo repository.DonationRepository,
	gateway PaymentGateway,
	baseURL string,
	logger *zap.Logger,
) *DonationUsecase {
	return &DonationUsecase{
		donationRepo: donationRepo,
		gateway:      gateway,
		baseURL:      baseURL,
		validate:     validator.New(),
		logger:       logger,
	}
}

// CreateDonation persists a pending donation, creates the gateway
// invoice and moves the row to processing.
//
// When invoice creation fails after the row was persisted, the row is
// rolled forward to failed (never left dangling in pending) and the
// returned result still carries the donation id so the client can
// reconcile; the error is returned alongside it.
func (u *DonationUsecase) CreateDonation(ctx context.Context, req *CreateDonationRequest) (*CreateDonationResult, error) {
	if err := u.validate.Struct(req); err != nil {
		return nil, domainErrors.NewValidationError("", err.Error())
	}

	amount := decimal.NewFromFloat(req.Amount)
	var walletNumber *string
	if req.WalletNumber != "" {
		walletNumber = &req.WalletNumber
	}

	donation := &model.Donation{
		StreamerID:       req.StreamerID,
		StreamerUsername: req.StreamerUsername,
		StreamerName:     req.StreamerName,
		DonorName:        req.FirstName,
		Message:          req.Description,
		Currency:         strings.ToUpper(req.Currency),
		Amount:           amount,
		PaymentMethod:    req.PaymentMethod,
		PaymentMethodID:  req.PaymentMethodID,
		RequiresRedirect: req.Redirect,
		WalletNumber:     walletNumber,
		Status:           model.DonationStatusPending,
	}

	if err := u.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}

	u.logger.Info("Donation persisted",
		zap.Int64("donation_id", donation.ID),
		zap.Int64("streamer_id", donation.StreamerID),
		zap.String("amount", amount.String()))

	invoice, err := u.gateway.CreateInvoice(ctx, u.buildInvoiceRequest(donation, req))
	if err != nil {
		u.logger.Error("Invoice creation failed, rolling donation to failed",
			zap.Int64("donation_id", donation.ID),
			zap.Error(err))
		if failErr := u.donationRepo.SetStatus(ctx, donation.ID, model.DonationStatusFailed); failErr != nil {
			u.logger.Error("Failed to roll donation to failed",
				zap.Int64("donation_id", donation.ID),
				zap.Error(failErr))
		}
		// Surface the donation id so the client can reconcile or retry.
		return &CreateDonationResult{DonationID: donation.ID}, err
	}

	invoiceID := fmt.Sprintf("%d", invoice.InvoiceID)
	if err := u.donationRepo.AttachInvoice(ctx, donation.ID, invoice.URL, invoice.InvoiceKey, invoiceID); err != nil {
		u.logger.Error("Failed to attach invoice, rolling donation to failed",
			zap.Int64("donation_id", donation.ID),
			zap.Error(err))
		if failErr := u.donationRepo.SetStatus(ctx, donation.ID, model.DonationStatusFailed); failErr != nil {
			u.logger.Error("Failed to roll donation to failed",
				zap.Int64("donation_id", donation.ID),
				zap.Error(failErr))
		}
		return &CreateDonationResult{DonationID: donation.ID}, err
	}

	u.logger.Info("Donation invoice created",
		zap.Int64("donation_id", donation.ID),
		zap.Int64("invoice_id", invoice.InvoiceID))

	return &CreateDonationResult{
		DonationID: donation.ID,
		PaymentURL: invoice.URL,
		InvoiceKey: invoice.InvoiceKey,
		InvoiceID:  invoice.InvoiceID,
	}, nil
}

// ListPaymentMethods proxies the gateway's method catalogue.
func (u *DonationUsecase) ListPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	return u.gateway.ListPaymentMethods(ctx)
}

// ListStreamerDonations returns a streamer's donations, newest first.
func (u *DonationUsecase) ListStreamerDonations(ctx context.Context, streamerID int64, limit, offset int) ([]model.Donation, error) {
	if streamerID <= 0 {
		return nil, domainErrors.NewValidationError("streamerId", "must be positive")
	}
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return u.donationRepo.ListByStreamer(ctx, streamerID, limit, offset)
}

func (u *DonationUsecase) buildInvoiceRequest(donation *model.Donation, req *CreateDonationRequest) *fawaterk.InvoiceRequest {
	email := req.StreamerEmail
	if email == "" {
		email = fmt.Sprintf("%s@donations.com", req.StreamerUsername)
	}
	phone := req.StreamerPhone
	if phone == "" {
		phone = "01000000000"
	}

	return &fawaterk.InvoiceRequest{
		CartItems: []fawaterk.CartItem{{
			Name:     fmt.Sprintf("تبرع لـ %s", req.StreamerName),
			Price:    donation.Amount,
			Quantity: 1,
		}},
		CartTotal: donation.Amount,
		Shipping:  0,
		Customer: fawaterk.Customer{
			FirstName: req.FirstName,
			LastName:  "المتبرع",
			Email:     email,
			Phone:     phone,
			Address:   fmt.Sprintf("تبرع لـ %s", req.StreamerName),
		},
		Currency: donation.Currency,
		Payload: fawaterk.InvoicePayload{
			DonationID:       donation.ID,
			StreamerID:       donation.StreamerID,
			StreamerName:     donation.StreamerName,
			StreamerUsername: donation.StreamerUsername,
			DonorName:        donation.DonorName,
			DonorMessage:     donation.Message,
			WalletNumber:     donation.WalletNumber,
		},
		SendEmail: false,
		SendSMS:   false,
		RedirectionURLs: fawaterk.RedirectionURLs{
			SuccessURL: fmt.Sprintf("%s/api/payments/success/%d", u.baseURL, donation.ID),
			FailURL:    fmt.Sprintf("%s/api/payments/failed/%d", u.baseURL, donation.ID),
			PendingURL: fmt.Sprintf("%s/api/payments/pending/%d", u.baseURL, donation.ID),
			WebhookURL: fmt.Sprintf("%s/api/payments/webhook/paid", u.baseURL),
		},
		PaymentMethodID: donation.PaymentMethodID,
	}
}
