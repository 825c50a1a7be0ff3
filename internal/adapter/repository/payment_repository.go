package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

type paymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewPaymentRepository(db *gorm.DB, logger *zap.Logger) repository.PaymentRepository {
	return &paymentRepository{db: db, logger: logger}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	db := extractTx(ctx, r.db)
	if err := db.WithContext(ctx).Create(payment).Error; err != nil {
		r.logger.Error("failed to create payment",
			zap.String("booking_id", payment.BookingID),
			zap.String("reference", payment.PaymentReference),
			zap.Error(err))
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, id string) error {
	db := extractTx(ctx, r.db)
	if err := db.WithContext(ctx).Delete(&model.Payment{}, "id = ?", id).Error; err != nil {
		r.logger.Error("failed to delete payment",
			zap.String("payment_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	return r.getOne(ctx, "id = ?", id, false)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	return r.getOne(ctx, "payment_reference = ?", reference, false)
}

func (r *paymentRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Payment, error) {
	return r.getOne(ctx, "id = ?", id, true)
}

func (r *paymentRepository) getOne(ctx context.Context, query string, arg string, forUpdate bool) (*model.Payment, error) {
	db := extractTx(ctx, r.db).WithContext(ctx).
		Preload("Booking").
		Preload("User").
		Where(query, arg)
	// sqlite has no FOR UPDATE; its single-writer transactions already
	// serialize the reconciler, so the clause is postgres-only.
	if forUpdate && r.db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payment model.Payment
	if err := db.First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) SetPaymentURL(ctx context.Context, id string, url string) error {
	db := extractTx(ctx, r.db)
	err := db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", id).
		Update("payment_url", url).Error
	if err != nil {
		return fmt.Errorf("failed to set payment url: %w", err)
	}
	return nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, gatewayResponse *string, paidAt *time.Time) error {
	db := extractTx(ctx, r.db)
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if gatewayResponse != nil {
		updates["gateway_response"] = *gatewayResponse
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	err := db.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		r.logger.Error("failed to update payment status",
			zap.String("payment_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	return nil
}

func (r *paymentRepository) SumSuccessfulByBooking(ctx context.Context, bookingID string, excludeID string) (decimal.Decimal, error) {
	db := extractTx(ctx, r.db)

	var sum decimal.NullDecimal
	err := db.WithContext(ctx).Model(&model.Payment{}).
		Select("SUM(amount)").
		Where("booking_id = ? AND status = ? AND id <> ?", bookingID, model.PaymentStatusSuccess, excludeID).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum successful payments: %w", err)
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) List(ctx context.Context, limit, offset int) ([]model.Payment, int64, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Preload("Booking").
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&payments).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Payment{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	return payments, total, nil
}

func (r *paymentRepository) Stats(ctx context.Context) (*repository.PaymentStats, error) {
	db := r.db.WithContext(ctx)
	stats := &repository.PaymentStats{TotalRevenue: decimal.Zero}

	if err := db.Model(&model.Payment{}).Count(&stats.TotalPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	if err := db.Model(&model.Payment{}).
		Where("status = ?", model.PaymentStatusSuccess).
		Count(&stats.SuccessfulPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to count successful payments: %w", err)
	}

	var revenue decimal.NullDecimal
	if err := db.Model(&model.Payment{}).
		Select("SUM(amount)").
		Where("status = ?", model.PaymentStatusSuccess).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}

	if err := db.
		Preload("Booking").
		Preload("User").
		Where("status = ?", model.PaymentStatusSuccess).
		Order("created_at DESC").
		Limit(5).
		Find(&stats.RecentPayments).Error; err != nil {
		return nil, fmt.Errorf("failed to list recent payments: %w", err)
	}

	return stats, nil
}

func (r *paymentRepository) ListStale(ctx context.Context, statuses []model.PaymentStatus, minAge time.Duration, limit int) ([]model.Payment, error) {
	cutoff := time.Now().Add(-minAge)

	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("status IN ? AND updated_at < ?", statuses, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale payments: %w", err)
	}
	return payments, nil
}
