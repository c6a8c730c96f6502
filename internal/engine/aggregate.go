package engine

import (
	"time"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	"github.com/hpratama/loan-ledger-engine/pkg/dates"

	"github.com/shopspring/decimal"
)

// MonthlyTotals maps year-month keys to summed amounts. Same-month events
// are additive, never overwriting.
type MonthlyTotals map[string]decimal.Decimal

func (m MonthlyTotals) add(date time.Time, amount decimal.Decimal) {
	key := dates.MonthKey(date)
	m[key] = m[key].Add(amount)
}

// For returns the total for the given month, zero if none.
func (m MonthlyTotals) For(month time.Time) decimal.Decimal {
	return m[dates.MonthKey(month)]
}

// AggregatePrepayments groups prepayments by calendar month.
func AggregatePrepayments(rows []domain.Prepayment) MonthlyTotals {
	totals := make(MonthlyTotals, len(rows))
	for _, row := range rows {
		totals.add(row.Date, row.Amount)
	}
	return totals
}

// AggregatePayments groups recorded payments by calendar month.
func AggregatePayments(rows []domain.RecordedPayment) MonthlyTotals {
	totals := make(MonthlyTotals, len(rows))
	for _, row := range rows {
		totals.add(row.Date, row.Amount)
	}
	return totals
}

// reduceInstallmentMonths collects the months in which any manual prepayment
// carries the reduce-installment strategy tag.
func reduceInstallmentMonths(rows []domain.Prepayment) map[string]bool {
	months := make(map[string]bool)
	for _, row := range rows {
		if row.Strategy == domain.PrepayStrategyReduceInstallment {
			months[dates.MonthKey(row.Date)] = true
		}
	}
	return months
}
