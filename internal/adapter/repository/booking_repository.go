package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

type bookingRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewBookingRepository(db *gorm.DB, logger *zap.Logger) repository.BookingRepository {
	return &bookingRepository{db: db, logger: logger}
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	db := extractTx(ctx, r.db)

	var booking model.Booking
	if err := db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) GetByIDForUser(ctx context.Context, id, userID string) (*model.Booking, error) {
	db := extractTx(ctx, r.db)

	var booking model.Booking
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdatePaymentStatus(ctx context.Context, id string, status model.BookingPaymentStatus) error {
	db := extractTx(ctx, r.db)
	err := db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     time.Now(),
		}).Error
	if err != nil {
		r.logger.Error("failed to update booking payment status",
			zap.String("booking_id", id),
			zap.String("payment_status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update booking payment status: %w", err)
	}
	return nil
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
