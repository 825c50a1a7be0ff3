package paystack

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/gateway"
)

// chargeData is the shared shape of /charge and its PIN/OTP
// continuations.
type chargeData struct {
	Status          string `json:"status"`
	Reference       string `json:"reference"`
	DisplayText     string `json:"display_text"`
	GatewayResponse string `json:"gateway_response"`
	Message         string `json:"message"`
}

func (d *chargeData) toResponse() *gateway.ChargeResponse {
	display := d.DisplayText
	if display == "" {
		display = d.Message
	}
	return &gateway.ChargeResponse{
		Status:          d.Status,
		Reference:       d.Reference,
		DisplayText:     display,
		GatewayResponse: d.GatewayResponse,
	}
}

// ChargeCard starts a direct card charge. The response status may be a
// terminal outcome or a send_pin/send_otp suspension requiring a
// follow-up call with the same reference.
// POST /charge
func (c *Client) ChargeCard(ctx context.Context, req *gateway.ChargeCardRequest) (*gateway.ChargeResponse, error) {
	c.logger.Info("paystack: charging card",
		zap.String("reference", req.Reference),
		zap.Int64("amount_minor", req.AmountMinor))

	card := map[string]string{
		"number":       req.Card.Number,
		"cvv":          req.Card.CVV,
		"expiry_month": req.Card.ExpiryMonth,
		"expiry_year":  req.Card.ExpiryYear,
	}
	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"reference": req.Reference,
		"card":      card,
	}
	if req.Card.PIN != "" {
		body["pin"] = req.Card.PIN
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var data chargeData
	if err := c.call(ctx, http.MethodPost, "/charge", body, &data); err != nil {
		return nil, err
	}

	c.logger.Info("paystack: charge state",
		zap.String("reference", req.Reference),
		zap.String("charge_status", data.Status))

	return data.toResponse(), nil
}

// SubmitPIN continues a charge suspended at send_pin.
// POST /charge/submit_pin
func (c *Client) SubmitPIN(ctx context.Context, reference, pin string) (*gateway.ChargeResponse, error) {
	body := map[string]string{
		"reference": reference,
		"pin":       pin,
	}
	var data chargeData
	if err := c.call(ctx, http.MethodPost, "/charge/submit_pin", body, &data); err != nil {
		return nil, err
	}
	return data.toResponse(), nil
}

// SubmitOTP continues a charge suspended at send_otp.
// POST /charge/submit_otp
func (c *Client) SubmitOTP(ctx context.Context, reference, otp string) (*gateway.ChargeResponse, error) {
	body := map[string]string{
		"reference": reference,
		"otp":       otp,
	}
	var data chargeData
	if err := c.call(ctx, http.MethodPost, "/charge/submit_otp", body, &data); err != nil {
		return nil, err
	}
	return data.toResponse(), nil
}
