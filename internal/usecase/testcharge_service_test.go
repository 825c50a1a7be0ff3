package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/model"
	"github.com/tailorcraft/payment-service/internal/webhook"
)

func newTestChargeFixture(t *testing.T, production bool) (*TestChargeService, *MockGatewayClient, *gorm.DB, *model.User, *model.Booking) {
	t.Helper()

	db, repos := newTestRepos(t)
	user := seedUser(t, db)
	booking := seedBooking(t, db, user.ID, "50000")

	gatewayMock := new(MockGatewayClient)
	ledger := NewLedgerService(repos.payment, repos.booking, repos.user, gatewayMock, "", zap.NewNop())
	reconciler := NewReconcilerService(repos.payment, repos.booking, repos.tx, zap.NewNop())
	verification := NewVerificationService(
		repos.payment, gatewayMock, reconciler, NopNotifier{}, nil,
		webhook.NewVerifier(webhookSecret), zap.NewNop())
	svc := NewTestChargeService(ledger, verification, gatewayMock, production, zap.NewNop())

	return svc, gatewayMock, db, user, booking
}

func paymentCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&model.Payment{}).Count(&count).Error)
	return count
}

func TestTestCharge_SuccessfulCard(t *testing.T) {
	svc, gatewayMock, db, user, booking := newTestChargeFixture(t, false)

	gatewayMock.On("ChargeCard", mock.Anything, mock.MatchedBy(func(req *gateway.ChargeCardRequest) bool {
		return req.Card.Number == "4084084084084081" && req.AmountMinor == 5000000
	})).Return(&gateway.ChargeResponse{Status: gateway.StatusSuccess, GatewayResponse: "Approved"}, nil).Once()
	gatewayMock.On("VerifyTransaction", mock.Anything, mock.Anything).
		Return(successVerdict("50000"), nil).Once()

	result, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "SUCCESSFUL_CARD")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "SUCCESSFUL_CARD", result.TestCardType)
	require.NotNil(t, result.Verification)
	assert.Equal(t, model.BookingPaymentSuccess, reloadBooking(t, db, booking.ID).PaymentStatus)
	gatewayMock.AssertExpectations(t)
}

func TestTestCharge_PinThenOtpChallenge(t *testing.T) {
	svc, gatewayMock, db, user, booking := newTestChargeFixture(t, false)

	gatewayMock.On("ChargeCard", mock.Anything, mock.Anything).
		Return(&gateway.ChargeResponse{Status: gateway.ChargeStatusSendPIN, DisplayText: "Enter PIN"}, nil).Once()
	gatewayMock.On("SubmitPIN", mock.Anything, mock.Anything, "1234").
		Return(&gateway.ChargeResponse{Status: gateway.ChargeStatusSendOTP, DisplayText: "Enter OTP"}, nil).Once()
	gatewayMock.On("SubmitOTP", mock.Anything, mock.Anything, "123456").
		Return(&gateway.ChargeResponse{Status: gateway.StatusSuccess, GatewayResponse: "Approved"}, nil).Once()
	gatewayMock.On("VerifyTransaction", mock.Anything, mock.Anything).
		Return(successVerdict("50000"), nil).Once()

	result, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "CARD_WITH_OTP")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, model.PaymentStatusSuccess, reloadPayment(t, db, result.Verification.Payment.ID).Status)
	gatewayMock.AssertExpectations(t)
}

func TestTestCharge_DeclinedCardCompensates(t *testing.T) {
	svc, gatewayMock, db, user, booking := newTestChargeFixture(t, false)

	gatewayMock.On("ChargeCard", mock.Anything, mock.Anything).
		Return(&gateway.ChargeResponse{Status: gateway.StatusFailed, GatewayResponse: "Insufficient Funds"}, nil).Once()

	result, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "INSUFFICIENT_FUNDS")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Charge not successful: Insufficient Funds", result.Message)
	assert.Equal(t, "INSUFFICIENT_FUNDS", result.TestCardType)
	// The declined attempt must not leave a ghost payment row.
	assert.Equal(t, int64(0), paymentCount(t, db))
	assert.Equal(t, model.BookingPaymentUnpaid, reloadBooking(t, db, booking.ID).PaymentStatus)
}

func TestTestCharge_GatewayTimeoutCompensates(t *testing.T) {
	svc, gatewayMock, db, user, booking := newTestChargeFixture(t, false)

	gatewayMock.On("ChargeCard", mock.Anything, mock.Anything).
		Return(nil, apperr.GatewayTimeout("payment gateway did not respond", nil)).Once()

	_, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "TIMEOUT_CARD")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeGatewayTimeout))
	assert.Equal(t, int64(0), paymentCount(t, db))
}

func TestTestCharge_FailsClosedInProduction(t *testing.T) {
	svc, gatewayMock, db, user, booking := newTestChargeFixture(t, true)

	_, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "SUCCESSFUL_CARD")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidState))

	// Nothing touched: no rows, no gateway traffic.
	assert.Equal(t, int64(0), paymentCount(t, db))
	gatewayMock.AssertNotCalled(t, "ChargeCard", mock.Anything, mock.Anything)
}

func TestTestCharge_UnknownCardType(t *testing.T) {
	svc, _, db, user, booking := newTestChargeFixture(t, false)

	_, err := svc.ProcessTestCharge(context.Background(), user.ID, booking.ID, decimal.NewFromInt(50000), false, "MYSTERY_CARD")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))
	assert.Equal(t, int64(0), paymentCount(t, db))
}
