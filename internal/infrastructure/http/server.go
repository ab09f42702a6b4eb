package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/streamtip/donation-service/internal/adapter/handler/http"
	"github.com/streamtip/donation-service/internal/config"
	"github.com/streamtip/donation-service/internal/middleware/auth"
	"go.uber.org/zap"
)

// Handlers groups the request handlers the server routes to.
type Handlers struct {
	Payment  *handlers.PaymentHandler
	Webhook  *handlers.WebhookHandler
	Callback *handlers.CallbackHandler
	Donation *handlers.DonationHandler
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	handlers *Handlers
}

func NewServer(cfg *config.Config, logger *zap.Logger, h *Handlers) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	return &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		handlers: h,
	}
}

func (s *Server) Start() error {
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	api := s.echo.Group("/api")

	// Donation form endpoints. The browser form posts here, so the
	// create route carries CSRF protection; webhook and callback routes
	// must not, the gateway cannot send a token.
	payments := api.Group("/payments")
	payments.GET("/getPayment", s.handlers.Payment.GetPaymentMethods)
	payments.POST("/create", s.handlers.Payment.CreatePayment, middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup: "header:X-CSRF-Token",
	}))

	// Browser-return redirects from the gateway's hosted page
	payments.GET("/success/:donationId", s.handlers.Callback.HandleSuccess)
	payments.GET("/failed/:donationId", s.handlers.Callback.HandleFailed)
	payments.GET("/pending/:donationId", s.handlers.Callback.HandlePending)

	// Asynchronous signed gateway callbacks
	payments.POST("/webhook/paid", s.handlers.Webhook.HandlePaid)
	payments.POST("/webhook/failed", s.handlers.Webhook.HandleFailed)

	// Queue-based creation path
	donations := api.Group("/donations")
	donations.POST("/create", s.handlers.Donation.CreateDonation)

	// Streamer dashboard (session-token protected)
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
	}
	donations.GET("", s.handlers.Donation.ListDonations, auth.JWTMiddleware(jwtConfig))
}
