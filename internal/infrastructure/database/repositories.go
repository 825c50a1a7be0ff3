package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	adapter "github.com/tailorcraft/payment-service/internal/adapter/repository"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

// Repositories bundles every persistence dependency handed to the
// usecases at startup.
type Repositories struct {
	Payment repository.PaymentRepository
	Booking repository.BookingRepository
	User    repository.UserRepository
	Tx      repository.TransactionManager
}

func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Payment: adapter.NewPaymentRepository(db, logger),
		Booking: adapter.NewBookingRepository(db, logger),
		User:    adapter.NewUserRepository(db),
		Tx:      adapter.NewTransactionManager(db),
	}
}
