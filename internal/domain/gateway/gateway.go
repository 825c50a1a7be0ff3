// Package gateway defines the contract with the external payment
// provider. The concrete client lives under infrastructure; everything
// above it depends on this interface so the gateway can be faked in
// tests.
package gateway

import (
	"context"
	"time"

	"github.com/tailorcraft/payment-service/internal/domain/model"
)

// Provider transaction statuses as reported by the verify endpoint.
const (
	StatusSuccess    = "success"
	StatusFailed     = "failed"
	StatusAbandoned  = "abandoned"
	StatusPending    = "pending"
	StatusReversed   = "reversed"
	StatusProcessing = "processing"
)

// Charge challenge states. send_pin and send_otp are suspension
// points, not failures: the charge continues with a follow-up call
// carrying the same reference.
const (
	ChargeStatusSendPIN = "send_pin"
	ChargeStatusSendOTP = "send_otp"
	ChargeStatusTimeout = "timeout"
)

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
	Metadata    map[string]string
}

type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyResponse struct {
	Status          string
	Reference       string
	AmountMinor     int64
	GatewayResponse string
	Channel         string
	PaidAt          *time.Time
}

type Card struct {
	Number      string
	CVV         string
	ExpiryMonth string
	ExpiryYear  string
	PIN         string
}

type ChargeCardRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	Card        Card
	Metadata    map[string]string
}

// ChargeResponse covers the whole multi-step charge protocol: the
// initial charge call and every PIN/OTP continuation return this
// shape.
type ChargeResponse struct {
	Status          string
	Reference       string
	DisplayText     string
	GatewayResponse string
}

type TransferRecipientRequest struct {
	Type          string
	Name          string
	AccountNumber string
	BankCode      string
	Currency      string
}

type TransferRequest struct {
	Source        string
	AmountMinor   int64
	RecipientCode string
	Reason        string
	Reference     string
}

type TransferResponse struct {
	TransferCode string
	Status       string
	Reference    string
}

// Client is the stateless wrapper around the provider's HTTP API.
// Verify is safe to call repeatedly; the provider's verify endpoint is
// itself idempotent.
type Client interface {
	InitializeTransaction(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error)
	VerifyTransaction(ctx context.Context, reference string) (*VerifyResponse, error)
	ChargeCard(ctx context.Context, req *ChargeCardRequest) (*ChargeResponse, error)
	SubmitPIN(ctx context.Context, reference, pin string) (*ChargeResponse, error)
	SubmitOTP(ctx context.Context, reference, otp string) (*ChargeResponse, error)
	CreateTransferRecipient(ctx context.Context, req *TransferRecipientRequest) (string, error)
	CreateTransfer(ctx context.Context, req *TransferRequest) (*TransferResponse, error)
}

// MapStatus translates a provider transaction status to the internal
// payment status. Unrecognized values map to UNPAID; nothing is ever
// left unmapped.
func MapStatus(providerStatus string) model.PaymentStatus {
	switch providerStatus {
	case StatusSuccess:
		return model.PaymentStatusSuccess
	case StatusFailed, StatusAbandoned:
		return model.PaymentStatusUnpaid
	case StatusPending:
		return model.PaymentStatusPending
	case StatusReversed:
		return model.PaymentStatusRefunded
	case StatusProcessing:
		return model.PaymentStatusProcessing
	default:
		return model.PaymentStatusUnpaid
	}
}
