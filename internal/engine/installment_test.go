package engine

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAnnuityInstallment(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		periods   int
	}{
		{
			name:      "One year at 12 percent",
			principal: decimal.NewFromInt(120000),
			rate:      decimal.NewFromInt(12),
			periods:   12,
		},
		{
			name:      "Twenty years at 8.5 percent",
			principal: decimal.NewFromInt(2500000),
			rate:      decimal.NewFromFloat(8.5),
			periods:   240,
		},
		{
			name:      "Single period",
			principal: decimal.NewFromInt(50000),
			rate:      decimal.NewFromInt(10),
			periods:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnnuityInstallment(tt.principal, tt.rate, tt.periods)

			// Cross-check against the float64 annuity formula.
			p, _ := tt.principal.Float64()
			r, _ := tt.rate.Float64()
			monthly := r / 1200.0
			pow := math.Pow(1+monthly, float64(tt.periods))
			want := p * monthly * pow / (pow - 1)

			assert.InDelta(t, want, got.InexactFloat64(), 0.01)
		})
	}
}

func TestAnnuityInstallmentZeroRate(t *testing.T) {
	got := AnnuityInstallment(decimal.NewFromInt(120000), decimal.Zero, 12)
	assert.True(t, got.Equal(decimal.NewFromInt(10000)), "zero rate should be straight-line principal, got %s", got)
}

func TestMonthlyInterest(t *testing.T) {
	// 12% annual on 100,000 is exactly 1,000 per month.
	got := MonthlyInterest(decimal.NewFromInt(100000), decimal.NewFromInt(12))
	assert.True(t, got.Equal(decimal.NewFromInt(1000)), "got %s", got)
}
