package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   int64
	}{
		{name: "whole amount", amount: "50000", want: 5000000},
		{name: "amount with kobo", amount: "150.75", want: 15075},
		{name: "one kobo", amount: "0.01", want: 1},
		{name: "zero", amount: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ToMinorUnits(amount))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(5000000).Equal(decimal.NewFromInt(50000)))
	assert.True(t, FromMinorUnits(15075).Equal(decimal.RequireFromString("150.75")))
	assert.True(t, FromMinorUnits(0).Equal(decimal.Zero))
}

func TestRoundTrip(t *testing.T) {
	amount := decimal.RequireFromString("1234.56")
	assert.True(t, FromMinorUnits(ToMinorUnits(amount)).Equal(amount))
}

func TestEqual(t *testing.T) {
	// Trailing zeroes must not break the reconciler's amount check.
	assert.True(t, Equal(decimal.RequireFromString("100.00"), decimal.NewFromInt(100)))
	assert.False(t, Equal(decimal.NewFromInt(100), decimal.RequireFromString("100.01")))
}
