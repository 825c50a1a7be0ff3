package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tailorcraft/payment-service/internal/domain/model"
)

// PaymentStats is the admin dashboard aggregate.
type PaymentStats struct {
	TotalPayments      int64           `json:"total_payments"`
	SuccessfulPayments int64           `json:"successful_payments"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	RecentPayments     []model.Payment `json:"recent_payments"`
}

// PaymentRepository owns persistence for payment records. Methods are
// transaction-aware: when the context carries an open transaction they
// run inside it.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// Delete removes a payment row. Used only as the compensating
	// action when gateway initialization fails after the row was
	// created.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Payment, error)
	GetByReference(ctx context.Context, reference string) (*model.Payment, error)
	// GetByIDForUpdate takes a row-level lock; the second of two
	// concurrent verifiers blocks here and then observes the committed
	// state.
	GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error)
	SetPaymentURL(ctx context.Context, id string, url string) error
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, gatewayResponse *string, paidAt *time.Time) error
	// SumSuccessfulByBooking returns the sum of SUCCESS payment
	// amounts for a booking, excluding one payment id.
	SumSuccessfulByBooking(ctx context.Context, bookingID string, excludeID string) (decimal.Decimal, error)
	ListByUser(ctx context.Context, userID string) ([]model.Payment, error)
	List(ctx context.Context, limit, offset int) ([]model.Payment, int64, error)
	Stats(ctx context.Context) (*PaymentStats, error)
	// ListStale returns non-terminal payments untouched for at least
	// minAge, oldest first.
	ListStale(ctx context.Context, statuses []model.PaymentStatus, minAge time.Duration, limit int) ([]model.Payment, error)
}
