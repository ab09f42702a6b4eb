package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/usecase"
	"go.uber.org/zap"
)

// PaymentHandler serves the donation form endpoints.
type PaymentHandler struct {
	donationUsecase *usecase.DonationUsecase
	logger          *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(donationUsecase *usecase.DonationUsecase, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		donationUsecase: donationUsecase,
		logger:          logger,
	}
}

// GetPaymentMethods returns the gateway's payment method catalogue.
func (h *PaymentHandler) GetPaymentMethods(c echo.Context) error {
	methods, err := h.donationUsecase.ListPaymentMethods(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to fetch payment methods", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Failed to fetch payment methods",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":         true,
		"paymentMethods": methods,
	})
}

// CreatePayment persists a donation and creates its gateway invoice.
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req usecase.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "Invalid request body",
		})
	}

	result, err := h.donationUsecase.CreateDonation(c.Request().Context(), &req)
	if err != nil {
		var validationErr *domainErrors.ValidationError
		if errors.As(err, &validationErr) {
			h.logger.Warn("Donation request rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": "Missing or invalid donation data",
			})
		}

		h.logger.Error("Failed to create donation", zap.Error(err))
		body := echo.Map{
			"status":  false,
			"message": "Failed to create donation",
		}
		if result != nil && result.DonationID != 0 {
			// Lets the client reconcile the failed row
			body["donationId"] = result.DonationID
		}
		return c.JSON(http.StatusInternalServerError, body)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":     true,
		"message":    "Donation created successfully",
		"donationId": result.DonationID,
		"paymentUrl": result.PaymentURL,
		"invoiceKey": result.InvoiceKey,
		"invoiceId":  result.InvoiceID,
	})
}
