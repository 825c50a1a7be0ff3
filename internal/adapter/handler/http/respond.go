package http

import (
	"errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
)

// respondError maps a taxonomy error onto its stable HTTP status.
// Plain errors become opaque 500s so internals never leak.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return c.JSON(apperr.HTTPStatus(appErr.Code()), echo.Map{
			"error": appErr.Message(),
			"code":  appErr.Code(),
		})
	}

	logger.Error("unhandled error", zap.Error(err))
	return c.JSON(apperr.HTTPStatus(apperr.CodeInternal), echo.Map{
		"error": "Internal server error",
		"code":  apperr.CodeInternal,
	})
}
