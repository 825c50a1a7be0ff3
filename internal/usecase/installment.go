package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/tailorcraft/payment-service/internal/domain/model"
)

// partialThreshold is the installment floor: a booking is not credited
// at all until cumulative successful payments reach 60% of its total.
var partialThreshold = decimal.NewFromFloat(0.6)

// InstallmentEffect is the booking-level consequence of one verified
// payment. UpdateBooking is false when the cumulative sum is still
// below the partial threshold: the payment record keeps the gateway's
// verdict but the booking stays as it was.
type InstallmentEffect struct {
	BookingStatus model.BookingPaymentStatus
	UpdateBooking bool
	PaidToDate    decimal.Decimal
}

// ComputeInstallmentEffect is pure threshold arithmetic, no I/O.
// Given the booking total, the sum of prior successful payments and
// the amount just verified:
//
//	paid <  60% of total  -> booking untouched (still UNPAID)
//	paid <  total         -> booking PARTIAL
//	paid >= total         -> booking SUCCESS
//
// Over-payment above the total is still SUCCESS; no refund is
// triggered here.
func ComputeInstallmentEffect(totalAmount, priorSuccessfulSum, thisPaymentAmount decimal.Decimal) InstallmentEffect {
	paid := priorSuccessfulSum.Add(thisPaymentAmount)
	floor := totalAmount.Mul(partialThreshold)

	switch {
	case paid.GreaterThanOrEqual(totalAmount):
		return InstallmentEffect{BookingStatus: model.BookingPaymentSuccess, UpdateBooking: true, PaidToDate: paid}
	case paid.GreaterThanOrEqual(floor):
		return InstallmentEffect{BookingStatus: model.BookingPaymentPartial, UpdateBooking: true, PaidToDate: paid}
	default:
		return InstallmentEffect{BookingStatus: model.BookingPaymentUnpaid, UpdateBooking: false, PaidToDate: paid}
	}
}

// FullPaymentEffect is the non-installment case: any gateway success
// maps directly to a fully paid booking, skipping the threshold.
func FullPaymentEffect(thisPaymentAmount decimal.Decimal) InstallmentEffect {
	return InstallmentEffect{
		BookingStatus: model.BookingPaymentSuccess,
		UpdateBooking: true,
		PaidToDate:    thisPaymentAmount,
	}
}
