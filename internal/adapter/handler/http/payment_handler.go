package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/middleware/auth"
	"github.com/tailorcraft/payment-service/internal/usecase"
)

type PaymentHandler struct {
	ledger       *usecase.LedgerService
	verification *usecase.VerificationService
	logger       *zap.Logger
}

func NewPaymentHandler(ledger *usecase.LedgerService, verification *usecase.VerificationService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		ledger:       ledger,
		verification: verification,
		logger:       logger,
	}
}

type InitializePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	IsInstallment bool            `json:"isInstallment"`
}

// InitializePayment starts a checkout session for the booking in the
// URL. The authenticated caller must own the booking.
func (h *PaymentHandler) InitializePayment(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil || user == nil {
		return err
	}

	bookingID := c.Param("bookingId")
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Booking ID is required"})
	}

	var req InitializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Amount must be a positive number"})
	}

	h.logger.Info("initializing payment",
		zap.String("user_id", user.UserID),
		zap.String("booking_id", bookingID),
		zap.String("amount", req.Amount.String()),
		zap.Bool("is_installment", req.IsInstallment))

	result, err := h.ledger.InitializePayment(c.Request().Context(), user.UserID, bookingID, req.Amount, req.IsInstallment)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Payment initialized successfully",
		"data":    result,
	})
}

// VerifyPayment settles the referenced payment against the gateway.
// The route is reachable without a bearer token because the gateway
// callback redirect carries no credentials.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	reference := c.QueryParam("reference")
	if reference == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Payment reference is required"})
	}

	result, err := h.verification.Verify(c.Request().Context(), reference)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	resp := echo.Map{
		"success":   result.Success,
		"message":   result.Message,
		"status":    result.Status,
		"reference": result.Reference,
		"data":      nil,
	}
	if result.Success {
		resp["data"] = echo.Map{
			"payment": result.Payment,
			"booking": result.Booking,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPaymentHistory returns the caller's own payments, newest first.
func (h *PaymentHandler) GetPaymentHistory(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil || user == nil {
		return err
	}

	payments, err := h.ledger.GetPaymentHistory(c.Request().Context(), user.UserID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    payments,
	})
}

// GetPaymentDetails returns one payment. Admins see any payment,
// everyone else only their own.
func (h *PaymentHandler) GetPaymentDetails(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil || user == nil {
		return err
	}

	paymentID := c.Param("id")
	payment, err := h.ledger.GetPaymentDetails(c.Request().Context(), paymentID, user.UserID, user.Role == auth.RoleAdmin)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    payment,
	})
}

// GetAllPayments is the admin listing with page/limit pagination.
func (h *PaymentHandler) GetAllPayments(c echo.Context) error {
	user, err := auth.RequireAdmin(c)
	if err != nil || user == nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	payments, pagination, err := h.ledger.GetAllPayments(c.Request().Context(), page, limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"data":       payments,
		"pagination": pagination,
	})
}

// GetPaymentStats is the admin dashboard aggregate.
func (h *PaymentHandler) GetPaymentStats(c echo.Context) error {
	user, err := auth.RequireAdmin(c)
	if err != nil || user == nil {
		return err
	}

	stats, err := h.ledger.GetPaymentStats(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    stats,
	})
}
