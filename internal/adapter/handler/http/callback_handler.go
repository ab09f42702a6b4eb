package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/streamtip/donation-service/internal/domain/model"
	"github.com/streamtip/donation-service/internal/domain/repository"
	"go.uber.org/zap"
)

const errorPage = "/payments/error.html"

// CallbackHandler serves the synchronous browser-return endpoints the
// gateway redirects the payer to. They carry only the donation id and
// only ever move status toward a terminal value; persistence failures
// degrade to a generic error page.
type CallbackHandler struct {
	donationRepo repository.DonationRepository
	logger       *zap.Logger
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(donationRepo repository.DonationRepository, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{
		donationRepo: donationRepo,
		logger:       logger,
	}
}

// HandleSuccess marks the donation completed and shows the success page.
func (h *CallbackHandler) HandleSuccess(c echo.Context) error {
	return h.redirect(c, model.DonationStatusCompleted, "success")
}

// HandleFailed marks the donation failed and shows the failure page.
func (h *CallbackHandler) HandleFailed(c echo.Context) error {
	return h.redirect(c, model.DonationStatusFailed, "failed")
}

// HandlePending marks the donation pending and shows the pending page.
func (h *CallbackHandler) HandlePending(c echo.Context) error {
	return h.redirect(c, model.DonationStatusPending, "pending")
}

func (h *CallbackHandler) redirect(c echo.Context, status model.DonationStatus, page string) error {
	donationID, err := strconv.ParseInt(c.Param("donationId"), 10, 64)
	if err != nil {
		h.logger.Warn("Invalid donation id in callback",
			zap.String("donation_id", c.Param("donationId")))
		return c.Redirect(http.StatusFound, errorPage)
	}

	if err := h.donationRepo.SetStatus(c.Request().Context(), donationID, status); err != nil {
		h.logger.Error("Failed to update donation from callback",
			zap.Int64("donation_id", donationID),
			zap.String("status", string(status)),
			zap.Error(err))
		return c.Redirect(http.StatusFound, errorPage)
	}

	h.logger.Info("Donation updated from browser callback",
		zap.Int64("donation_id", donationID),
		zap.String("status", string(status)))

	return c.Redirect(http.StatusFound, fmt.Sprintf("/payments/%s?donation=%d", page, donationID))
}
