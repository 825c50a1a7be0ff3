package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

// Sweeper periodically re-verifies payments stuck in PENDING or
// PROCESSING, references for which no webhook ever arrived and the
// client stopped polling. It reuses the idempotent verify path, so a
// payment that settled in the meantime is a cheap no-op.
type Sweeper struct {
	paymentRepo  repository.PaymentRepository
	verification *VerificationService
	cfg          config.SweeperConfig
	logger       *zap.Logger
}

func NewSweeper(paymentRepo repository.PaymentRepository, verification *VerificationService, cfg config.SweeperConfig, logger *zap.Logger) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = config.Duration(10 * time.Minute)
	}
	if cfg.MinAge <= 0 {
		cfg.MinAge = config.Duration(30 * time.Minute)
	}
	if cfg.Batch <= 0 {
		cfg.Batch = 50
	}
	return &Sweeper{
		paymentRepo:  paymentRepo,
		verification: verification,
		cfg:          cfg,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval.Std())
	defer ticker.Stop()

	s.logger.Info("payment sweeper started",
		zap.Duration("interval", s.cfg.Interval.Std()),
		zap.Duration("min_age", s.cfg.MinAge.Std()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("payment sweeper stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce re-verifies one batch of stale payments.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	stale, err := s.paymentRepo.ListStale(ctx,
		[]model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusProcessing},
		s.cfg.MinAge.Std(), s.cfg.Batch)
	if err != nil {
		s.logger.Error("sweeper failed to list stale payments", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.Info("sweeping stale payments", zap.Int("count", len(stale)))
	for _, payment := range stale {
		if ctx.Err() != nil {
			return
		}
		result, err := s.verification.Verify(ctx, payment.PaymentReference)
		if err != nil {
			s.logger.Warn("stale payment re-verification failed",
				zap.String("payment_id", payment.ID),
				zap.String("reference", payment.PaymentReference),
				zap.Error(err))
			continue
		}
		s.logger.Info("stale payment re-verified",
			zap.String("payment_id", payment.ID),
			zap.String("reference", payment.PaymentReference),
			zap.String("status", result.Status))
	}
}
