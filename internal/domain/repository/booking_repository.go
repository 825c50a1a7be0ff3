package repository

import (
	"context"

	"github.com/tailorcraft/payment-service/internal/domain/model"
)

// BookingRepository reads bookings and applies the reconciler's
// payment-status writes. No other component writes
// Booking.PaymentStatus.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	// GetByIDForUser scopes the lookup to the owning user.
	GetByIDForUser(ctx context.Context, id, userID string) (*model.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id string, status model.BookingPaymentStatus) error
}

// UserRepository is the read-only projection of the identity
// collaborator's accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}
