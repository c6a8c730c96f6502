package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TerminationReason is why schedule generation stopped.
type TerminationReason string

const (
	// TerminationPayoff means the balance reached zero.
	TerminationPayoff TerminationReason = "payoff"
	// TerminationCap means the 600-period cap was hit before payoff.
	TerminationCap TerminationReason = "cap_reached"
	// TerminationHorizon means reconciliation reached the current month.
	TerminationHorizon TerminationReason = "horizon_reached"
)

// WarningNegativeAmortization marks a period whose installment did not cover
// accrued interest. Principal reduction is floored at zero for such periods.
const WarningNegativeAmortization = "installment below interest; no principal reduction"

// PeriodEntry is one row of a schedule or ledger. All currency figures are
// rounded to 2 decimal places at emission; the engines accumulate unrounded.
type PeriodEntry struct {
	Period         int             `json:"period" db:"period_index"`
	Month          time.Time       `json:"month" db:"month"`
	OpeningBalance decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	Installment    decimal.Decimal `json:"installment" db:"installment"`
	Interest       decimal.Decimal `json:"interest" db:"interest"`
	Principal      decimal.Decimal `json:"principal" db:"principal"`
	Prepayment     decimal.Decimal `json:"prepayment" db:"prepayment"`
	ClosingBalance decimal.Decimal `json:"closing_balance" db:"closing_balance"`
	RatePercent    decimal.Decimal `json:"rate_percent" db:"rate_percent"`
	Warning        string          `json:"warning,omitempty" db:"warning"`
}

// Schedule is the ordered output of one engine run together with the reason
// generation stopped.
type Schedule struct {
	Entries     []PeriodEntry     `json:"entries"`
	Termination TerminationReason `json:"termination"`
}

// SummaryMetrics are the aggregate figures reduced from a schedule.
// CompletionPeriod and CompletionMonth are nil while the loan is still open
// within the processed horizon.
type SummaryMetrics struct {
	TotalInstallment     decimal.Decimal `json:"total_installment"`
	TotalInterest        decimal.Decimal `json:"total_interest"`
	TotalPrepayment      decimal.Decimal `json:"total_prepayment"`
	OutstandingPrincipal decimal.Decimal `json:"outstanding_principal"`
	CompletionPeriod     *int            `json:"completion_period,omitempty"`
	CompletionMonth      *time.Time      `json:"completion_month,omitempty"`
	Tenure               int             `json:"tenure"`
}
