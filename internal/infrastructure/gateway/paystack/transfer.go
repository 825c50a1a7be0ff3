package paystack

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/gateway"
)

// CreateTransferRecipient registers a settlement destination and
// returns its recipient code.
// POST /transferrecipient
func (c *Client) CreateTransferRecipient(ctx context.Context, req *gateway.TransferRecipientRequest) (string, error) {
	body := map[string]string{
		"type":           req.Type,
		"name":           req.Name,
		"account_number": req.AccountNumber,
		"bank_code":      req.BankCode,
		"currency":       req.Currency,
	}

	var data struct {
		RecipientCode string `json:"recipient_code"`
	}
	if err := c.call(ctx, http.MethodPost, "/transferrecipient", body, &data); err != nil {
		return "", err
	}

	return data.RecipientCode, nil
}

// CreateTransfer moves balance funds to a recipient. Used only for
// platform settlement, never on the client verification path.
// POST /transfer
func (c *Client) CreateTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferResponse, error) {
	c.logger.Info("paystack: creating transfer",
		zap.String("reference", req.Reference),
		zap.Int64("amount_minor", req.AmountMinor))

	body := map[string]interface{}{
		"source":    req.Source,
		"amount":    req.AmountMinor,
		"recipient": req.RecipientCode,
		"reason":    req.Reason,
		"reference": req.Reference,
	}

	var data struct {
		TransferCode string `json:"transfer_code"`
		Status       string `json:"status"`
		Reference    string `json:"reference"`
	}
	if err := c.call(ctx, http.MethodPost, "/transfer", body, &data); err != nil {
		return nil, err
	}

	return &gateway.TransferResponse{
		TransferCode: data.TransferCode,
		Status:       data.Status,
		Reference:    data.Reference,
	}, nil
}
