// Package money is the single place where major currency units (how
// amounts are stored) meet the gateway's minor units (kobo). Keeping
// the conversion behind named functions makes the boundary testable
// and keeps the *100 arithmetic out of business code.
package money

import "github.com/shopspring/decimal"

var minorFactor = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the gateway's integral
// minor units.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorFactor).IntPart()
}

// FromMinorUnits converts the gateway's integral minor units back to a
// major-unit amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorFactor)
}

// Equal reports whether two amounts are numerically equal regardless
// of trailing zeroes.
func Equal(a, b decimal.Decimal) bool {
	return a.Equal(b)
}
