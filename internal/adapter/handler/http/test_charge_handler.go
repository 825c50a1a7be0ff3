package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/middleware/auth"
	"github.com/tailorcraft/payment-service/internal/usecase"
)

type TestChargeHandler struct {
	testCharge *usecase.TestChargeService
	logger     *zap.Logger
}

func NewTestChargeHandler(testCharge *usecase.TestChargeService, logger *zap.Logger) *TestChargeHandler {
	return &TestChargeHandler{
		testCharge: testCharge,
		logger:     logger,
	}
}

type TestChargeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	IsInstallment bool            `json:"isInstallment"`
	TestCardType  string          `json:"testCardType" validate:"required"`
}

// ProcessTestCharge runs a canned-card charge against the test
// gateway. The route is not registered in production; the usecase
// fails closed as well.
func (h *TestChargeHandler) ProcessTestCharge(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil || user == nil {
		return err
	}

	bookingID := c.Param("bookingId")
	if bookingID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Booking ID is required"})
	}

	var req TestChargeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Test card type is required"})
	}
	if !req.Amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Amount must be a positive number"})
	}

	h.logger.Info("processing test charge",
		zap.String("user_id", user.UserID),
		zap.String("booking_id", bookingID),
		zap.String("test_card_type", req.TestCardType))

	result, err := h.testCharge.ProcessTestCharge(c.Request().Context(), user.UserID, bookingID, req.Amount, req.IsInstallment, req.TestCardType)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, result)
}
