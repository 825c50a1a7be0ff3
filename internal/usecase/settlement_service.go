package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/money"
)

// SettlementService sweeps successful live payments into the platform
// bank account. It never runs on the client-facing verification hot
// path's critical section; callers treat its errors as log-and-move-on.
type SettlementService struct {
	gateway  gateway.Client
	account  config.SettlementConfig
	liveMode bool
	logger   *zap.Logger
}

func NewSettlementService(gatewayClient gateway.Client, account config.SettlementConfig, liveMode bool, logger *zap.Logger) *SettlementService {
	return &SettlementService{
		gateway:  gatewayClient,
		account:  account,
		liveMode: liveMode,
		logger:   logger,
	}
}

// SettlePayment creates a transfer recipient for the platform account
// and moves the paid amount from the gateway balance. Test mode is a
// no-op: test balances cannot be transferred.
func (s *SettlementService) SettlePayment(ctx context.Context, payment *model.Payment) error {
	if !s.liveMode {
		s.logger.Debug("settlement skipped outside live mode",
			zap.String("payment_id", payment.ID))
		return nil
	}

	recipientCode, err := s.gateway.CreateTransferRecipient(ctx, &gateway.TransferRecipientRequest{
		Type:          "nuban",
		Name:          s.account.AccountName,
		AccountNumber: s.account.AccountNumber,
		BankCode:      s.account.BankCode,
		Currency:      s.account.Currency,
	})
	if err != nil {
		return fmt.Errorf("transfer recipient creation failed: %w", err)
	}

	transfer, err := s.gateway.CreateTransfer(ctx, &gateway.TransferRequest{
		Source:        "balance",
		AmountMinor:   money.ToMinorUnits(payment.Amount),
		RecipientCode: recipientCode,
		Reason:        fmt.Sprintf("Settlement for booking %s", payment.BookingID),
		Reference:     fmt.Sprintf("TRANSFER_%s_%d", payment.PaymentReference, time.Now().UnixMilli()),
	})
	if err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}

	s.logger.Info("settlement transfer created",
		zap.String("payment_id", payment.ID),
		zap.String("transfer_code", transfer.TransferCode),
		zap.String("transfer_status", transfer.Status))
	return nil
}
