package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/config"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/webhook"
)

func TestSweeper_ReverifiesStuckPayments(t *testing.T) {
	db, repos := newTestRepos(t)
	user := seedUser(t, db)
	booking := seedBooking(t, db, user.ID, "50000")
	stuck := seedPayment(t, db, user.ID, booking.ID, "50000", false, model.PaymentStatusPending)
	fresh := seedPayment(t, db, user.ID, booking.ID, "50000", false, model.PaymentStatusUnpaid)

	// Age the stuck row past the sweep threshold.
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(stuck).UpdateColumn("updated_at", old).Error)

	gatewayMock := new(MockGatewayClient)
	gatewayMock.On("VerifyTransaction", mock.Anything, stuck.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	reconciler := NewReconcilerService(repos.payment, repos.booking, repos.tx, zap.NewNop())
	verification := NewVerificationService(
		repos.payment, gatewayMock, reconciler, NopNotifier{}, nil,
		webhook.NewVerifier(webhookSecret), zap.NewNop())

	sweeper := NewSweeper(repos.payment, verification, config.SweeperConfig{
		MinAge: config.Duration(30 * time.Minute),
		Batch:  10,
	}, zap.NewNop())

	sweeper.SweepOnce(context.Background())

	assert.Equal(t, model.PaymentStatusSuccess, reloadPayment(t, db, stuck.ID).Status)
	// UNPAID rows are never swept; the client simply never paid.
	assert.Equal(t, model.PaymentStatusUnpaid, reloadPayment(t, db, fresh.ID).Status)
	gatewayMock.AssertExpectations(t)
}

func TestSweeper_NoStaleRowsIsNoOp(t *testing.T) {
	_, repos := newTestRepos(t)

	gatewayMock := new(MockGatewayClient)
	reconciler := NewReconcilerService(repos.payment, repos.booking, repos.tx, zap.NewNop())
	verification := NewVerificationService(
		repos.payment, gatewayMock, reconciler, NopNotifier{}, nil,
		webhook.NewVerifier(webhookSecret), zap.NewNop())

	sweeper := NewSweeper(repos.payment, verification, config.SweeperConfig{}, zap.NewNop())
	sweeper.SweepOnce(context.Background())

	gatewayMock.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
}
