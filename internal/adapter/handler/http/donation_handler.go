package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	domainErrors "github.com/streamtip/donation-service/internal/domain/errors"
	"github.com/streamtip/donation-service/internal/middleware/auth"
	"github.com/streamtip/donation-service/internal/usecase"
	"go.uber.org/zap"
)

// DonationHandler serves the queue-based creation path and the streamer
// dashboard listing.
type DonationHandler struct {
	queueUsecase    *usecase.QueueDonationUsecase
	donationUsecase *usecase.DonationUsecase
	logger          *zap.Logger
}

// NewDonationHandler creates a new DonationHandler
func NewDonationHandler(
	queueUsecase *usecase.QueueDonationUsecase,
	donationUsecase *usecase.DonationUsecase,
	logger *zap.Logger,
) *DonationHandler {
	return &DonationHandler{
		queueUsecase:    queueUsecase,
		donationUsecase: donationUsecase,
		logger:          logger,
	}
}

// CreateDonation persists a donation and enqueues its signed completion
// event for the worker.
func (h *DonationHandler) CreateDonation(c echo.Context) error {
	var req usecase.QueueDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":  false,
			"message": "Invalid request body",
		})
	}

	donationID, err := h.queueUsecase.CreateQueuedDonation(c.Request().Context(), &req)
	if err != nil {
		var validationErr *domainErrors.ValidationError
		if errors.As(err, &validationErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"status":  false,
				"message": "Missing data",
			})
		}

		h.logger.Error("Failed to queue donation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Internal Server Error",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":      true,
		"message":     "Donation queued successfully",
		"donation_id": donationID,
	})
}

// ListDonations returns the authenticated streamer's donations.
func (h *DonationHandler) ListDonations(c echo.Context) error {
	streamer, err := auth.GetStreamerFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"status":  false,
			"message": "Unauthorized",
		})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	donations, err := h.donationUsecase.ListStreamerDonations(c.Request().Context(), streamer.StreamerID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list donations",
			zap.Int64("streamer_id", streamer.StreamerID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"status":  false,
			"message": "Failed to list donations",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":    true,
		"donations": donations,
	})
}
