package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/usecase"
)

// SignatureHeader carries the gateway's HMAC over the raw body.
const SignatureHeader = "X-Signature"

type WebhookHandler struct {
	verification *usecase.VerificationService
	logger       *zap.Logger
}

func NewWebhookHandler(verification *usecase.VerificationService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verification: verification,
		logger:       logger,
	}
}

// HandleWebhook acknowledges gateway notifications. The gateway only
// stops retrying on a 2xx, so every outcome answers 200; a rejected
// signature or undecodable payload just flips the success flag, and
// business failures downstream are already logged before we get here.
func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", zap.Error(err))
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}

	sig := c.Request().Header.Get(SignatureHeader)

	if err := h.verification.HandleWebhook(c.Request().Context(), body, sig); err != nil {
		if !apperr.IsCode(err, apperr.CodeSignatureInvalid) {
			h.logger.Warn("webhook payload rejected", zap.Error(err))
		}
		return c.JSON(http.StatusOK, echo.Map{"success": false})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
