package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

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

// MockGatewayClient is a mock implementation of gateway.Client
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) InitializeTransaction(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitializeResponse), args.Error(1)
}

func (m *MockGatewayClient) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.VerifyResponse), args.Error(1)
}

func (m *MockGatewayClient) ChargeCard(ctx context.Context, req *gateway.ChargeCardRequest) (*gateway.ChargeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ChargeResponse), args.Error(1)
}

func (m *MockGatewayClient) SubmitPIN(ctx context.Context, reference, pin string) (*gateway.ChargeResponse, error) {
	args := m.Called(ctx, reference, pin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ChargeResponse), args.Error(1)
}

func (m *MockGatewayClient) SubmitOTP(ctx context.Context, reference, otp string) (*gateway.ChargeResponse, error) {
	args := m.Called(ctx, reference, otp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.ChargeResponse), args.Error(1)
}

func (m *MockGatewayClient) CreateTransferRecipient(ctx context.Context, req *gateway.TransferRecipientRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockGatewayClient) CreateTransfer(ctx context.Context, req *gateway.TransferRequest) (*gateway.TransferResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TransferResponse), args.Error(1)
}

// recordingNotifier counts dispatched events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []PaymentEvent
	err    error
}

func (n *recordingNotifier) PaymentSucceeded(_ context.Context, event PaymentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

const webhookSecret = "whsec_test"

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newVerificationFixture(t *testing.T) (*VerificationService, *MockGatewayClient, *recordingNotifier, *testFixtureData) {
	t.Helper()

	db, repos := newTestRepos(t)
	user := seedUser(t, db)
	booking := seedBooking(t, db, user.ID, "50000")
	payment := seedPayment(t, db, user.ID, booking.ID, "50000", false, model.PaymentStatusUnpaid)

	gatewayMock := new(MockGatewayClient)
	notifier := &recordingNotifier{}

	reconciler := NewReconcilerService(repos.payment, repos.booking, repos.tx, zap.NewNop())
	svc := NewVerificationService(
		repos.payment,
		gatewayMock,
		reconciler,
		notifier,
		nil,
		webhook.NewVerifier(webhookSecret),
		zap.NewNop(),
	)

	return svc, gatewayMock, notifier, &testFixtureData{db: db, payment: payment, booking: booking}
}

type testFixtureData struct {
	db      *gorm.DB
	payment *model.Payment
	booking *model.Booking
}

func TestVerification_SuccessfulVerify(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Payment verified successfully", result.Message)
	assert.Equal(t, gateway.StatusSuccess, result.Status)
	assert.Equal(t, model.PaymentStatusSuccess, reloadPayment(t, fx.db, fx.payment.ID).Status)
	assert.Equal(t, model.BookingPaymentSuccess, reloadBooking(t, fx.db, fx.booking.ID).PaymentStatus)
	assert.Equal(t, 1, notifier.count())
	gatewayMock.AssertExpectations(t)
}

func TestVerification_ReverifyShortCircuits(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	_, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	// Second call must not reach the gateway or notify again.
	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Payment already verified", result.Message)
	assert.Equal(t, 1, notifier.count())
	gatewayMock.AssertNumberOfCalls(t, "VerifyTransaction", 1)
}

func TestVerification_RefundedPaymentShortCircuits(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	require.NoError(t, fx.db.Model(&model.Payment{}).
		Where("id = ?", fx.payment.ID).
		Update("status", model.PaymentStatusRefunded).Error)

	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Payment was refunded", result.Message)
	assert.Equal(t, gateway.StatusReversed, result.Status)
	assert.Equal(t, 0, notifier.count())
	gatewayMock.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
	assert.Equal(t, model.PaymentStatusRefunded, reloadPayment(t, fx.db, fx.payment.ID).Status)
}

func TestVerification_NonSuccessVerdict(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(&gateway.VerifyResponse{
			Status:          gateway.StatusFailed,
			AmountMinor:     5000000,
			GatewayResponse: "Declined",
		}, nil).Once()

	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "Payment not successful: Declined", result.Message)
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, model.BookingPaymentUnpaid, reloadBooking(t, fx.db, fx.booking.ID).PaymentStatus)
}

func TestVerification_ValidationErrors(t *testing.T) {
	svc, _, _, _ := newVerificationFixture(t)

	_, err := svc.Verify(context.Background(), "")
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidArgument))

	_, err = svc.Verify(context.Background(), "TC_unknown_1")
	assert.True(t, apperr.IsCode(err, apperr.CodeNotFound))
}

func TestVerification_NotificationFailureDoesNotFailVerify(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)
	notifier.err = fmt.Errorf("broker down")

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, model.PaymentStatusSuccess, reloadPayment(t, fx.db, fx.payment.ID).Status)
}

func TestVerification_WebhookSettlesPayment(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	body := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s","status":"success","amount":5000000}}`,
		fx.payment.PaymentReference))

	err := svc.HandleWebhook(context.Background(), body, signBody(body))
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusSuccess, reloadPayment(t, fx.db, fx.payment.ID).Status)
	assert.Equal(t, model.BookingPaymentSuccess, reloadBooking(t, fx.db, fx.booking.ID).PaymentStatus)
	assert.Equal(t, 1, notifier.count())
}

func TestVerification_WebhookRejectsTamperedBody(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	genuine := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s"}}`, fx.payment.PaymentReference))
	tampered := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s","amount":1}}`, fx.payment.PaymentReference))

	err := svc.HandleWebhook(context.Background(), tampered, signBody(genuine))
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, apperr.CodeSignatureInvalid))

	// No state change, no gateway traffic, no notification.
	assert.Equal(t, model.PaymentStatusUnpaid, reloadPayment(t, fx.db, fx.payment.ID).Status)
	assert.Equal(t, 0, notifier.count())
	gatewayMock.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
}

func TestVerification_WebhookThenPollNotifiesOnce(t *testing.T) {
	svc, gatewayMock, notifier, fx := newVerificationFixture(t)

	gatewayMock.On("VerifyTransaction", mock.Anything, fx.payment.PaymentReference).
		Return(successVerdict("50000"), nil).Once()

	body := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s"}}`, fx.payment.PaymentReference))
	require.NoError(t, svc.HandleWebhook(context.Background(), body, signBody(body)))

	// The client polls right after the webhook landed.
	result, err := svc.Verify(context.Background(), fx.payment.PaymentReference)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, notifier.count())
}

func TestVerification_IgnoredEventIsAcknowledged(t *testing.T) {
	svc, gatewayMock, notifier, _ := newVerificationFixture(t)

	body := []byte(`{"event":"subscription.create","data":{}}`)
	err := svc.HandleWebhook(context.Background(), body, signBody(body))
	require.NoError(t, err)

	assert.Equal(t, 0, notifier.count())
	gatewayMock.AssertNotCalled(t, "VerifyTransaction", mock.Anything, mock.Anything)
}
