// Package paystack implements the gateway.Client contract against the
// Paystack HTTP API. The client is stateless; every call carries the
// caller's context and an explicit timeout so that a silent provider
// is reported as a timeout, never as a declined payment.
package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 15 * time.Second
)

type Client struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

// NewClient builds a Paystack API client. A zero timeout falls back to
// 15 seconds.
func NewClient(secretKey string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   defaultBaseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub
// server.
func NewClientWithBaseURL(baseURL, secretKey string, timeout time.Duration, logger *zap.Logger) *Client {
	c := NewClient(secretKey, timeout, logger)
	c.baseURL = baseURL
	return c
}

// envelope is Paystack's uniform response wrapper.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call performs one API request and decodes the envelope. Any
// non-success provider answer surfaces as a GatewayError carrying the
// provider's message verbatim; unreachable or silent providers surface
// as GatewayTimeout.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return apperr.GatewayError("failed to prepare gateway request", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return apperr.GatewayError("failed to create gateway request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("paystack request timed out",
				zap.String("path", path),
				zap.Error(err))
			return apperr.GatewayTimeout("payment gateway did not respond", err)
		}
		c.logger.Error("paystack request failed",
			zap.String("path", path),
			zap.Error(err))
		return apperr.GatewayError("payment gateway request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.GatewayError("failed to read gateway response", err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		c.logger.Error("paystack response is not valid JSON",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode))
		return apperr.GatewayError("failed to parse gateway response", err)
	}

	if resp.StatusCode >= 400 || !env.Status {
		c.logger.Error("paystack call rejected",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("message", env.Message))
		return apperr.GatewayError(env.Message, nil)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperr.GatewayError("failed to parse gateway response data", err)
		}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t
	}
	// Paystack sometimes omits the zone designator.
	if t, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return &t
	}
	return nil
}

// InitializeTransaction creates a hosted checkout session.
// POST /transaction/initialize
func (c *Client) InitializeTransaction(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	c.logger.Info("paystack: initializing transaction",
		zap.String("reference", req.Reference),
		zap.Int64("amount_minor", req.AmountMinor))

	body := map[string]interface{}{
		"email":     req.Email,
		"amount":    req.AmountMinor,
		"reference": req.Reference,
	}
	if req.CallbackURL != "" {
		body["callback_url"] = req.CallbackURL
	}
	if len(req.Metadata) > 0 {
		body["metadata"] = req.Metadata
	}

	var data struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	}
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, err
	}

	return &gateway.InitializeResponse{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

// VerifyTransaction fetches the authoritative transaction state.
// GET /transaction/verify/{reference}
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	var data struct {
		Status          string `json:"status"`
		Reference       string `json:"reference"`
		Amount          int64  `json:"amount"`
		GatewayResponse string `json:"gateway_response"`
		Channel         string `json:"channel"`
		PaidAt          string `json:"paid_at"`
	}
	path := "/transaction/verify/" + url.PathEscape(reference)
	if err := c.call(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	c.logger.Info("paystack: transaction verified",
		zap.String("reference", reference),
		zap.String("provider_status", data.Status),
		zap.Int64("amount_minor", data.Amount))

	return &gateway.VerifyResponse{
		Status:          data.Status,
		Reference:       data.Reference,
		AmountMinor:     data.Amount,
		GatewayResponse: data.GatewayResponse,
		Channel:         data.Channel,
		PaidAt:          parseTime(data.PaidAt),
	}, nil
}
