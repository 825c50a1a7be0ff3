package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tailorcraft/payment-service/internal/domain/apperr"
	"github.com/tailorcraft/payment-service/internal/domain/gateway"
	"github.com/tailorcraft/payment-service/internal/domain/money"
)

// Canned gateway test instruments. Card numbers are Paystack's public
// test cards; PIN and OTP are the fixed values the test gateway
// accepts.
const (
	testPIN = "1234"
	testOTP = "123456"
)

var testCards = map[string]gateway.Card{
	"SUCCESSFUL_CARD":    {Number: "4084084084084081", CVV: "408", ExpiryMonth: "12", ExpiryYear: "30"},
	"INSUFFICIENT_FUNDS": {Number: "4084080000005408", CVV: "001", ExpiryMonth: "12", ExpiryYear: "30"},
	"CARD_WITH_PIN":      {Number: "5078507850785078", CVV: "081", ExpiryMonth: "12", ExpiryYear: "30"},
	"CARD_WITH_OTP":      {Number: "5060666666666666666", CVV: "123", ExpiryMonth: "12", ExpiryYear: "30"},
	"INVALID_CARD":       {Number: "4111111111111112", CVV: "000", ExpiryMonth: "12", ExpiryYear: "30"},
	"TIMEOUT_CARD":       {Number: "5061020000000000094", CVV: "606", ExpiryMonth: "12", ExpiryYear: "30"},
}

// maxChallengeSteps bounds the PIN/OTP continuation loop; the gateway
// protocol never needs more than a pin step followed by an otp step.
const maxChallengeSteps = 4

// TestChargeService drives the gateway's multi-step challenge protocol
// with canned test instruments so staging can exercise the exact
// production reconciliation path. It fails closed in production.
type TestChargeService struct {
	ledger       *LedgerService
	verification *VerificationService
	gateway      gateway.Client
	production   bool
	logger       *zap.Logger
}

func NewTestChargeService(
	ledger *LedgerService,
	verification *VerificationService,
	gatewayClient gateway.Client,
	production bool,
	logger *zap.Logger,
) *TestChargeService {
	return &TestChargeService{
		ledger:       ledger,
		verification: verification,
		gateway:      gatewayClient,
		production:   production,
		logger:       logger,
	}
}

// TestChargeResult reports the terminal state of one simulated charge.
type TestChargeResult struct {
	Success      bool                `json:"success"`
	Status       string              `json:"status"`
	Message      string              `json:"message"`
	Reference    string              `json:"reference"`
	TestCardType string              `json:"testCardType"`
	Verification *VerificationResult `json:"verification,omitempty"`
}

// ProcessTestCharge creates a pending payment, charges the chosen test
// card through every PIN/OTP suspension, and feeds a terminal success
// into the normal verification path. Declined charges compensate by
// deleting the payment row.
func (s *TestChargeService) ProcessTestCharge(ctx context.Context, userID, bookingID string, amount decimal.Decimal, isInstallment bool, testCardType string) (*TestChargeResult, error) {
	if s.production {
		return nil, apperr.InvalidState("test charges are disabled in production")
	}

	card, ok := testCards[testCardType]
	if !ok {
		return nil, apperr.New(apperr.CodeInvalidArgument, fmt.Sprintf("unknown test card type %q", testCardType))
	}

	payment, user, err := s.ledger.CreatePendingPayment(ctx, userID, bookingID, amount, isInstallment)
	if err != nil {
		return nil, err
	}

	resp, err := s.gateway.ChargeCard(ctx, &gateway.ChargeCardRequest{
		Email:       user.Email,
		AmountMinor: money.ToMinorUnits(amount),
		Reference:   payment.PaymentReference,
		Card:        card,
		Metadata: map[string]string{
			"bookingId":    bookingID,
			"paymentId":    payment.ID,
			"testCardType": testCardType,
		},
	})
	if err == nil {
		resp, err = s.resolveChallenges(ctx, payment.PaymentReference, resp)
	}
	if err != nil {
		s.ledger.CompensateFailedInitialization(ctx, payment.ID)
		return nil, err
	}

	if resp.Status != gateway.StatusSuccess {
		// Terminal decline: compensate and echo the gateway's stated
		// reason plus the card type for observability.
		s.ledger.CompensateFailedInitialization(ctx, payment.ID)
		reason := resp.GatewayResponse
		if reason == "" {
			reason = resp.Status
		}
		s.logger.Info("test charge declined",
			zap.String("reference", payment.PaymentReference),
			zap.String("test_card_type", testCardType),
			zap.String("charge_status", resp.Status),
			zap.String("reason", reason))
		return &TestChargeResult{
			Success:      false,
			Status:       resp.Status,
			Message:      fmt.Sprintf("Charge not successful: %s", reason),
			Reference:    payment.PaymentReference,
			TestCardType: testCardType,
		}, nil
	}

	// Terminal success funnels into the same reconciliation path as
	// production traffic.
	verification, err := s.verification.Verify(ctx, payment.PaymentReference)
	if err != nil {
		return nil, err
	}

	return &TestChargeResult{
		Success:      verification.Success,
		Status:       verification.Status,
		Message:      verification.Message,
		Reference:    payment.PaymentReference,
		TestCardType: testCardType,
		Verification: verification,
	}, nil
}

// resolveChallenges walks the charge through send_pin/send_otp
// suspensions with the fixed test credentials, reusing the same
// reference on every continuation.
func (s *TestChargeService) resolveChallenges(ctx context.Context, reference string, resp *gateway.ChargeResponse) (*gateway.ChargeResponse, error) {
	for step := 0; step < maxChallengeSteps; step++ {
		var err error
		switch resp.Status {
		case gateway.ChargeStatusSendPIN:
			s.logger.Debug("test charge suspended at pin", zap.String("reference", reference))
			resp, err = s.gateway.SubmitPIN(ctx, reference, testPIN)
		case gateway.ChargeStatusSendOTP:
			s.logger.Debug("test charge suspended at otp", zap.String("reference", reference))
			resp, err = s.gateway.SubmitOTP(ctx, reference, testOTP)
		default:
			return resp, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, apperr.GatewayError("charge challenge loop did not terminate", nil)
}
