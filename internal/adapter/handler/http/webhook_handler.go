package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/usecase"
	"go.uber.org/zap"
)

// WebhookHandler ingests signed gateway callbacks.
type WebhookHandler struct {
	processor *usecase.WebhookProcessor
	logger    *zap.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(processor *usecase.WebhookProcessor, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// HandlePaid processes a paid-status webhook.
func (h *WebhookHandler) HandlePaid(c echo.Context) error {
	return h.handle(c, model.DonationStatusCompleted)
}

// HandleFailed processes a failed-status webhook.
func (h *WebhookHandler) HandleFailed(c echo.Context) error {
	return h.handle(c, model.DonationStatusFailed)
}

func (h *WebhookHandler) handle(c echo.Context, target model.DonationStatus) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading webhook body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	headers := c.Request().Header
	signature := headers.Get("x-fawaterk-signature")
	if signature == "" {
		signature = headers.Get("signature")
	}
	timestamp := headers.Get("x-webhook-timestamp")
	if timestamp == "" {
		timestamp = headers.Get("timestamp")
	}

	req := &usecase.WebhookRequest{
		RawBody:        body,
		Signature:      signature,
		Timestamp:      timestamp,
		IdempotencyKey: headers.Get("idempotency-key"),
	}

	result, err := h.processor.Process(c.Request().Context(), req, target)
	if err != nil {
		var validationErr *domainErrors.ValidationError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": validationErr.Error()})
		}
		var authErr *domainErrors.AuthError
		if errors.As(err, &authErr) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": authErr.Error()})
		}

		h.logger.Error("Webhook processing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  "error",
			"message": "Webhook processing failed",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": result.Message,
	})
}
