package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/money"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

// LedgerService owns the Payment record lifecycle: creation of pending
// attempts, the compensating delete when gateway initialization fails,
// and read queries over the audit trail.
type LedgerService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	gateway     gateway.Client
	callbackURL string
	logger      *zap.Logger
}

func NewLedgerService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	gatewayClient gateway.Client,
	callbackURL string,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		gateway:     gatewayClient,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

// InitializeResult is returned to the client so it can open the hosted
// checkout page.
type InitializeResult struct {
	PaymentURL string `json:"paymentUrl"`
	Reference  string `json:"reference"`
	PaymentID  string `json:"paymentId"`
}

// newPaymentReference generates a provider-facing reference. The
// random UUID makes it collision-free across concurrent initialization
// attempts; the millisecond suffix keeps references sortable when
// scanning provider dashboards.
func newPaymentReference() string {
	return fmt.Sprintf("TC_%s_%d", uuid.NewString(), time.Now().UnixMilli())
}

// CreatePendingPayment validates the booking and writes the pending
// payment row, reference included, before any gateway traffic.
func (s *LedgerService) CreatePendingPayment(ctx context.Context, userID, bookingID string, amount decimal.Decimal, isInstallment bool) (*model.Payment, *model.User, error) {
	booking, err := s.bookingRepo.GetByIDForUser(ctx, bookingID, userID)
	if err != nil {
		return nil, nil, err
	}
	if booking == nil {
		return nil, nil, apperr.NotFound("booking not found")
	}
	if booking.Status != model.BookingStatusApproved {
		return nil, nil, apperr.InvalidState("booking must be approved before payment can be made")
	}
	if booking.PaymentStatus == model.BookingPaymentSuccess {
		return nil, nil, apperr.Conflict("booking already paid")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperr.NotFound("user not found")
	}

	payment := &model.Payment{
		ID:               uuid.NewString(),
		UserID:           userID,
		BookingID:        bookingID,
		PaymentReference: newPaymentReference(),
		Amount:           amount,
		Status:           model.PaymentStatusUnpaid,
		IsInstallment:    isInstallment,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, nil, err
	}

	s.logger.Info("pending payment created",
		zap.String("payment_id", payment.ID),
		zap.String("booking_id", bookingID),
		zap.String("reference", payment.PaymentReference),
		zap.String("amount", amount.String()),
		zap.Bool("is_installment", isInstallment))

	return payment, user, nil
}

// CompensateFailedInitialization deletes a payment row whose gateway
// initialization never produced a checkout link, so no ghost attempt
// survives.
func (s *LedgerService) CompensateFailedInitialization(ctx context.Context, paymentID string) {
	if err := s.paymentRepo.Delete(ctx, paymentID); err != nil {
		s.logger.Error("compensation delete failed, orphaned payment row remains",
			zap.String("payment_id", paymentID),
			zap.Error(err))
	}
}

// InitializePayment runs the full initialization flow: pending row,
// hosted checkout session, checkout URL stored on the row. Gateway
// failure compensates by deleting the row and surfaces the gateway
// error untouched.
func (s *LedgerService) InitializePayment(ctx context.Context, userID, bookingID string, amount decimal.Decimal, isInstallment bool) (*InitializeResult, error) {
	payment, user, err := s.CreatePendingPayment(ctx, userID, bookingID, amount, isInstallment)
	if err != nil {
		return nil, err
	}

	initResp, err := s.gateway.InitializeTransaction(ctx, &gateway.InitializeRequest{
		Email:       user.Email,
		AmountMinor: money.ToMinorUnits(amount),
		Reference:   payment.PaymentReference,
		CallbackURL: s.callbackURL,
		Metadata: map[string]string{
			"bookingId":     bookingID,
			"userId":        userID,
			"paymentId":     payment.ID,
			"isInstallment": fmt.Sprintf("%t", isInstallment),
		},
	})
	if err != nil {
		s.logger.Warn("gateway initialization failed, compensating",
			zap.String("payment_id", payment.ID),
			zap.String("reference", payment.PaymentReference),
			zap.Error(err))
		s.CompensateFailedInitialization(ctx, payment.ID)
		return nil, err
	}

	if err := s.paymentRepo.SetPaymentURL(ctx, payment.ID, initResp.AuthorizationURL); err != nil {
		return nil, err
	}

	return &InitializeResult{
		PaymentURL: initResp.AuthorizationURL,
		Reference:  payment.PaymentReference,
		PaymentID:  payment.ID,
	}, nil
}

// GetPaymentHistory returns the client's own payments, newest first.
func (s *LedgerService) GetPaymentHistory(ctx context.Context, userID string) ([]model.Payment, error) {
	if userID == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "user id is required")
	}
	return s.paymentRepo.ListByUser(ctx, userID)
}

// Pagination mirrors the admin listing envelope.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// GetAllPayments is the admin listing.
func (s *LedgerService) GetAllPayments(ctx context.Context, page, limit int) ([]model.Payment, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}

	payments, total, err := s.paymentRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return payments, &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}, nil
}

// GetPaymentStats is the admin dashboard aggregate.
func (s *LedgerService) GetPaymentStats(ctx context.Context) (*repository.PaymentStats, error) {
	return s.paymentRepo.Stats(ctx)
}

// GetPaymentDetails returns one payment; non-admin callers only see
// their own.
func (s *LedgerService) GetPaymentDetails(ctx context.Context, paymentID, userID string, isAdmin bool) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil || (!isAdmin && payment.UserID != userID) {
		return nil, apperr.NotFound("payment not found")
	}
	return payment, nil
}
