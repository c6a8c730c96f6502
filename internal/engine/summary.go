package engine

import (
	"github.com/hpratama/loan-ledger-engine/internal/domain"

	"github.com/shopspring/decimal"
)

// Summarize reduces a schedule into aggregate metrics. The original
// principal must be passed alongside the entries: an empty ledger (loan not
// yet started) carries no balance information of its own.
func Summarize(entries []domain.PeriodEntry, originalPrincipal decimal.Decimal) domain.SummaryMetrics {
	summary := domain.SummaryMetrics{
		OutstandingPrincipal: originalPrincipal,
		Tenure:               len(entries),
	}

	for _, entry := range entries {
		summary.TotalInstallment = summary.TotalInstallment.Add(entry.Installment)
		summary.TotalInterest = summary.TotalInterest.Add(entry.Interest)
		summary.TotalPrepayment = summary.TotalPrepayment.Add(entry.Prepayment)
	}

	if len(entries) == 0 {
		return summary
	}

	last := entries[len(entries)-1]
	summary.OutstandingPrincipal = last.ClosingBalance
	if last.ClosingBalance.IsZero() {
		period := last.Period
		month := last.Month
		summary.CompletionPeriod = &period
		summary.CompletionMonth = &month
	}
	return summary
}
