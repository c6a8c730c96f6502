package engine

import "github.com/shopspring/decimal"

var (
	one             = decimal.NewFromInt(1)
	monthlyRateBase = decimal.NewFromInt(1200)
)

// AnnuityInstallment computes the fixed monthly installment that fully
// amortizes principal over periods months at the given annual rate percent:
//
//	installment = P·r·(1+r)^N / ((1+r)^N − 1), r = rate/1200
//
// A zero rate degenerates to straight-line principal P/N. Callers must clamp
// periods to at least 1 before calling.
func AnnuityInstallment(principal, annualRatePercent decimal.Decimal, periods int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periods))
	if annualRatePercent.IsZero() {
		return principal.Div(n)
	}

	r := annualRatePercent.Div(monthlyRateBase)
	compounded := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(compounded).Div(compounded.Sub(one))
}

// MonthlyInterest returns one month of interest accrued on a balance at the
// given annual rate percent.
func MonthlyInterest(balance, annualRatePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(annualRatePercent).Div(monthlyRateBase)
}
