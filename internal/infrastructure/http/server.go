package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	handlers "github.com/tailorcraft/payment-service/internal/adapter/handler/http"
	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/infrastructure/database"
	"github.com/tailorcraft/payment-service/internal/middleware/auth"
	"github.com/tailorcraft/payment-service/internal/middleware/ratelimit"
	"github.com/tailorcraft/payment-service/internal/usecase"
	"github.com/tailorcraft/payment-service/internal/webhook"
)

// requestValidator plugs go-playground/validator into echo's
// c.Validate.
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	gateway  gateway.Client
	notifier usecase.Notifier
	redis    *redis.Client
	services *services
}

func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	repos *database.Repositories,
	gatewayClient gateway.Client,
	notifier usecase.Notifier,
	redisClient *redis.Client,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.ClientURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))

	srv := &Server{
		config:   cfg,
		logger:   logger,
		echo:     e,
		repos:    repos,
		gateway:  gatewayClient,
		notifier: notifier,
		redis:    redisClient,
	}
	srv.services = srv.buildServices()
	return srv
}

// Verification exposes the wired verification service so the sweeper
// can reuse the exact same reconciliation path.
func (s *Server) Verification() *usecase.VerificationService {
	return s.services.verification
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

type services struct {
	ledger       *usecase.LedgerService
	verification *usecase.VerificationService
	testCharge   *usecase.TestChargeService
}

func (s *Server) buildServices() *services {
	ledger := usecase.NewLedgerService(
		s.repos.Payment,
		s.repos.Booking,
		s.repos.User,
		s.gateway,
		s.config.Service.Paystack.CallbackURL,
		s.logger,
	)
	reconciler := usecase.NewReconcilerService(s.repos.Payment, s.repos.Booking, s.repos.Tx, s.logger)
	settlement := usecase.NewSettlementService(
		s.gateway,
		s.config.Service.Settlement,
		s.config.Service.Paystack.LiveMode,
		s.logger,
	)
	verification := usecase.NewVerificationService(
		s.repos.Payment,
		s.gateway,
		reconciler,
		s.notifier,
		settlement,
		webhook.NewVerifier(s.config.Service.Paystack.WebhookSecret),
		s.logger,
	)
	testCharge := usecase.NewTestChargeService(
		ledger,
		verification,
		s.gateway,
		s.config.Service.IsProduction(),
		s.logger,
	)

	return &services{ledger: ledger, verification: verification, testCharge: testCharge}
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	svc := s.services

	paymentHandler := handlers.NewPaymentHandler(svc.ledger, svc.verification, s.logger)
	webhookHandler := handlers.NewWebhookHandler(svc.verification, s.logger)

	jwtConfig := auth.JWTConfig{
		Secret: s.config.JWT.Secret,
		Logger: s.logger,
	}

	// API v1 routes, rate limited per caller
	v1 := s.echo.Group("/api/v1", ratelimit.New(s.config.Server.RateLimit, s.redis, s.logger))

	// Public: the gateway callback redirect carries no bearer token
	v1.GET("/payments/verify", paymentHandler.VerifyPayment)

	// Protected routes (require JWT authentication)
	protected := v1.Group("", auth.JWTMiddleware(jwtConfig))
	protected.POST("/payments/:bookingId", paymentHandler.InitializePayment)
	protected.GET("/payments/history", paymentHandler.GetPaymentHistory)
	protected.GET("/payments/:id", paymentHandler.GetPaymentDetails)

	// Admin routes (role checked in the handlers)
	protected.GET("/payments", paymentHandler.GetAllPayments)
	protected.GET("/payments/stats", paymentHandler.GetPaymentStats)

	// Test charge endpoint never exists in production; the usecase
	// fails closed too in case this gate is ever miswired.
	if !s.config.Service.IsProduction() {
		testChargeHandler := handlers.NewTestChargeHandler(svc.testCharge, s.logger)
		protected.POST("/payments/:bookingId/test-charge", testChargeHandler.ProcessTestCharge)
	}

	// Webhook route (outside API versioning)
	s.echo.POST("/webhook/paystack", webhookHandler.HandleWebhook)
}
