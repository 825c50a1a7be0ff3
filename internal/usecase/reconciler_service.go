package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/money"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

// ReconcilerService is the transactional boundary that aligns a
// Payment and its Booking with the gateway's authoritative verdict.
// Both rows commit together or not at all; no other component writes
// either status.
type ReconcilerService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	tx          repository.TransactionManager
	logger      *zap.Logger
}

func NewReconcilerService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	tx repository.TransactionManager,
	logger *zap.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		tx:          tx,
		logger:      logger,
	}
}

// ReconcileOutcome reports what the transaction did.
type ReconcileOutcome struct {
	Payment *model.Payment
	Booking *model.Booking
	// ProviderSuccess is true when the payment stands SUCCESS after the
	// call, whether committed now or by an earlier verification.
	ProviderSuccess bool
	// Transitioned is true only for the call that moved the payment to
	// SUCCESS; the idempotent short-circuit and non-success verdicts
	// leave it false so side effects fire at most once.
	Transitioned bool
}

// ApplyVerifiedPayment maps the provider status onto the payment,
// re-validates the amount, runs the installment accounting and commits
// payment and booking in one transaction. The payment row is locked
// for the duration, so a concurrent webhook/poll racer blocks and then
// observes the committed SUCCESS through the short-circuit instead of
// re-crediting the booking.
func (s *ReconcilerService) ApplyVerifiedPayment(ctx context.Context, paymentID string, verdict *gateway.VerifyResponse) (*ReconcileOutcome, error) {
	outcome := &ReconcileOutcome{}

	err := s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.GetByIDForUpdate(txCtx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return apperr.NotFound("payment not found")
		}

		// Terminal short-circuit: SUCCESS is the idempotent replay case
		// (a concurrent verifier committed while we waited on the lock)
		// and REFUNDED must never move again, so a late success verdict
		// cannot re-credit the booking.
		if payment.Status.Terminal() {
			booking, err := s.bookingRepo.GetByID(txCtx, payment.BookingID)
			if err != nil {
				return err
			}
			outcome.Payment = payment
			outcome.Booking = booking
			outcome.ProviderSuccess = payment.Status == model.PaymentStatusSuccess
			return nil
		}

		gatewayResponse := verdict.GatewayResponse
		if gatewayResponse == "" {
			gatewayResponse = verdict.Status
		}

		if verdict.Status != gateway.StatusSuccess {
			// Non-success verdicts touch only the payment record; the
			// booking keeps its current payment status.
			mapped := gateway.MapStatus(verdict.Status)
			if err := s.paymentRepo.UpdateStatus(txCtx, payment.ID, mapped, &gatewayResponse, nil); err != nil {
				return err
			}
			payment.Status = mapped
			payment.GatewayResponse = &gatewayResponse
			outcome.Payment = payment
			outcome.ProviderSuccess = false
			s.logger.Info("payment not successful at gateway",
				zap.String("payment_id", payment.ID),
				zap.String("reference", payment.PaymentReference),
				zap.String("provider_status", verdict.Status),
				zap.String("mapped_status", string(mapped)))
			return nil
		}

		providerAmount := money.FromMinorUnits(verdict.AmountMinor)
		if !money.Equal(providerAmount, payment.Amount) {
			s.logger.Error("gateway amount does not match stored payment",
				zap.String("payment_id", payment.ID),
				zap.String("reference", payment.PaymentReference),
				zap.String("stored_amount", payment.Amount.String()),
				zap.String("provider_amount", providerAmount.String()))
			return apperr.AmountMismatch(fmt.Sprintf(
				"amount mismatch: expected %s, got %s",
				payment.Amount.String(), providerAmount.String()))
		}

		booking, err := s.bookingRepo.GetByID(txCtx, payment.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.NotFound("booking not found")
		}

		var effect InstallmentEffect
		if payment.IsInstallment {
			priorSum, err := s.paymentRepo.SumSuccessfulByBooking(txCtx, payment.BookingID, payment.ID)
			if err != nil {
				return err
			}
			effect = ComputeInstallmentEffect(booking.TotalAmount, priorSum, payment.Amount)
		} else {
			effect = FullPaymentEffect(payment.Amount)
		}

		paidAt := verdict.PaidAt
		if paidAt == nil {
			now := time.Now()
			paidAt = &now
		}
		if err := s.paymentRepo.UpdateStatus(txCtx, payment.ID, model.PaymentStatusSuccess, &gatewayResponse, paidAt); err != nil {
			return err
		}
		payment.Status = model.PaymentStatusSuccess
		payment.GatewayResponse = &gatewayResponse
		payment.PaidAt = paidAt

		if effect.UpdateBooking {
			if err := s.bookingRepo.UpdatePaymentStatus(txCtx, booking.ID, effect.BookingStatus); err != nil {
				return err
			}
			booking.PaymentStatus = effect.BookingStatus
		}

		outcome.Payment = payment
		outcome.Booking = booking
		outcome.ProviderSuccess = true
		outcome.Transitioned = true

		s.logger.Info("payment reconciled",
			zap.String("payment_id", payment.ID),
			zap.String("booking_id", booking.ID),
			zap.String("reference", payment.PaymentReference),
			zap.String("booking_payment_status", string(booking.PaymentStatus)),
			zap.String("paid_to_date", effect.PaidToDate.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
