package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
	"github.com/tailorcraft/payment-service/internal/webhook"
)

// VerificationService is the single entry point for settling a payment
// reference, whether a webhook or a polling client fires first. Both
// paths converge here, and the already-SUCCESS short-circuit plus the
// reconciler's row lock make the effective transition happen at most
// once.
type VerificationService struct {
	paymentRepo repository.PaymentRepository
	gateway     gateway.Client
	reconciler  *ReconcilerService
	notifier    Notifier
	settlement  *SettlementService
	verifier    *webhook.Verifier
	logger      *zap.Logger
}

func NewVerificationService(
	paymentRepo repository.PaymentRepository,
	gatewayClient gateway.Client,
	reconciler *ReconcilerService,
	notifier Notifier,
	settlement *SettlementService,
	verifier *webhook.Verifier,
	logger *zap.Logger,
) *VerificationService {
	return &VerificationService{
		paymentRepo: paymentRepo,
		gateway:     gatewayClient,
		reconciler:  reconciler,
		notifier:    notifier,
		settlement:  settlement,
		verifier:    verifier,
		logger:      logger,
	}
}

// VerificationResult is the client-facing outcome of a verify call.
type VerificationResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Status    string         `json:"status"`
	Reference string         `json:"reference"`
	Payment   *model.Payment `json:"payment,omitempty"`
	Booking   *model.Booking `json:"booking,omitempty"`
}

// Verify settles one payment reference against the gateway's
// authoritative state. Re-verifying an already successful payment
// returns the stored result without gateway traffic or side effects.
func (s *VerificationService) Verify(ctx context.Context, reference string) (*VerificationResult, error) {
	if reference == "" {
		return nil, apperr.New(apperr.CodeInvalidArgument, "payment reference is required")
	}

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperr.NotFound("payment not found")
	}

	if payment.Status == model.PaymentStatusSuccess {
		s.logger.Debug("verify short-circuit: payment already successful",
			zap.String("reference", reference))
		return &VerificationResult{
			Success:   true,
			Message:   "Payment already verified",
			Status:    gateway.StatusSuccess,
			Reference: reference,
			Payment:   payment,
			Booking:   payment.Booking,
		}, nil
	}
	if payment.Status == model.PaymentStatusRefunded {
		s.logger.Debug("verify short-circuit: payment refunded",
			zap.String("reference", reference))
		return refundedResult(reference), nil
	}

	verdict, err := s.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	outcome, err := s.reconciler.ApplyVerifiedPayment(ctx, payment.ID, verdict)
	if err != nil {
		return nil, err
	}

	if !outcome.ProviderSuccess {
		// A racer may have refunded the payment while we waited on the
		// row lock; report the stored state, not the stale verdict.
		if outcome.Payment != nil && outcome.Payment.Status == model.PaymentStatusRefunded {
			return refundedResult(reference), nil
		}
		reason := verdict.GatewayResponse
		if reason == "" {
			reason = verdict.Status
		}
		return &VerificationResult{
			Success:   false,
			Message:   fmt.Sprintf("Payment not successful: %s", reason),
			Status:    verdict.Status,
			Reference: reference,
		}, nil
	}

	// Side effects only for the call that actually committed the
	// transition; the racer that lost takes the cached branch above or
	// the reconciler's own short-circuit.
	if outcome.Transitioned {
		s.dispatchSideEffects(ctx, outcome)
	}

	return &VerificationResult{
		Success:   true,
		Message:   "Payment verified successfully",
		Status:    gateway.StatusSuccess,
		Reference: reference,
		Payment:   outcome.Payment,
		Booking:   outcome.Booking,
	}, nil
}

func refundedResult(reference string) *VerificationResult {
	return &VerificationResult{
		Success:   false,
		Message:   "Payment was refunded",
		Status:    gateway.StatusReversed,
		Reference: reference,
	}
}

// dispatchSideEffects runs after the reconciliation commit. Both the
// settlement transfer and the notification are best-effort: failures
// are logged and never bubble into the payment result.
func (s *VerificationService) dispatchSideEffects(ctx context.Context, outcome *ReconcileOutcome) {
	payment := outcome.Payment

	if s.settlement != nil {
		if err := s.settlement.SettlePayment(ctx, payment); err != nil {
			s.logger.Error("settlement transfer failed, manual transfer required",
				zap.String("payment_id", payment.ID),
				zap.String("reference", payment.PaymentReference),
				zap.Error(err))
		}
	}

	event := PaymentEvent{
		PaymentID: payment.ID,
		BookingID: payment.BookingID,
		UserID:    payment.UserID,
		Reference: payment.PaymentReference,
		Amount:    payment.Amount,
	}
	if payment.User != nil {
		event.UserName = payment.User.Name
		event.UserEmail = payment.User.Email
	}
	if outcome.Booking != nil {
		event.BookingStatus = outcome.Booking.PaymentStatus
	}
	if err := s.notifier.PaymentSucceeded(ctx, event); err != nil {
		s.logger.Warn("payment notification dispatch failed",
			zap.String("payment_id", payment.ID),
			zap.Error(err))
	}
}

// HandleWebhook processes one inbound gateway notification. The
// signature is checked against the raw body before anything else; a
// mismatch changes no state. Business failures on the charge.success
// path are logged, not returned, because the caller must acknowledge
// the delivery either way.
func (s *VerificationService) HandleWebhook(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if !s.verifier.Verify(rawBody, signatureHeader) {
		s.logger.Warn("webhook rejected: signature mismatch")
		return apperr.SignatureInvalid()
	}

	event, err := webhook.ParseEvent(rawBody)
	if err != nil {
		s.logger.Warn("webhook rejected: undecodable payload", zap.Error(err))
		return err
	}

	s.logger.Info("webhook event received", zap.String("event", event.Event))

	switch event.Event {
	case webhook.EventChargeSuccess:
		if _, err := s.Verify(ctx, event.Data.Reference); err != nil {
			// Manual reconciliation path: acknowledged to the gateway,
			// logged loudly here.
			s.logger.Error("webhook verification failed",
				zap.String("reference", event.Data.Reference),
				zap.String("code", apperr.CodeOf(err)),
				zap.Error(err))
		}
	case webhook.EventTransferSuccess, webhook.EventTransferFailed:
		s.logger.Info("transfer event acknowledged",
			zap.String("event", event.Event),
			zap.String("reference", event.Data.Reference),
			zap.String("transfer_status", event.Data.Status))
	default:
		s.logger.Debug("webhook event ignored", zap.String("event", event.Event))
	}

	return nil
}
