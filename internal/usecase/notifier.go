package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tailorcraft/payment-service/internal/domain/model"
)

// PaymentEvent is the context handed to the notification collaborator
// after a successful reconciliation commit.
type PaymentEvent struct {
	PaymentID     string                     `json:"payment_id"`
	BookingID     string                     `json:"booking_id"`
	UserID        string                     `json:"user_id"`
	UserName      string                     `json:"user_name,omitempty"`
	UserEmail     string                     `json:"user_email,omitempty"`
	Reference     string                     `json:"reference"`
	Amount        decimal.Decimal            `json:"amount"`
	BookingStatus model.BookingPaymentStatus `json:"booking_payment_status"`
}

// Notifier is the fire-and-forget notification collaborator. Dispatch
// happens after the reconciliation transaction commits; failures are
// logged by implementations and must never fail a payment.
type Notifier interface {
	PaymentSucceeded(ctx context.Context, event PaymentEvent) error
}

// NopNotifier is used in tests and when the broker is not configured.
type NopNotifier struct{}

func (NopNotifier) PaymentSucceeded(context.Context, PaymentEvent) error { return nil }
