package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Prepayment strategies. Reduce-tenure leaves the installment unchanged so
// the loan finishes sooner; reduce-installment re-amortizes the remaining
// balance over the remaining tenure.
const (
	PrepayStrategyReduceTenure      = "reduce_tenure"
	PrepayStrategyReduceInstallment = "reduce_installment"
)

// RateChange records a new annual interest rate taking effect from a date.
// No two rate changes on one loan may share an effective date.
type RateChange struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        string          `json:"loan_id" db:"loan_id"`
	EffectiveDate time.Time       `json:"effective_date" db:"effective_date"`
	AnnualRate    decimal.Decimal `json:"annual_rate" db:"annual_rate"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// Prepayment is a lump sum applied directly against principal.
type Prepayment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    string          `json:"loan_id" db:"loan_id"`
	Date      time.Time       `json:"date" db:"date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Note      string          `json:"note,omitempty" db:"note"`
	Strategy  string          `json:"strategy,omitempty" db:"strategy"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// RecordedPayment is an installment actually paid in some month. Multiple
// payments in the same month are summed.
type RecordedPayment struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	LoanID    string          `json:"loan_id" db:"loan_id"`
	Date      time.Time       `json:"date" db:"date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// RecurringPrepaymentRule configures automatic prepayments for projections:
// a fixed amount every IntervalPeriods periods from StartPeriod, plus an
// independent annual lump sum in a fixed calendar month.
type RecurringPrepaymentRule struct {
	StartPeriod     int             `json:"start_period" validate:"gte=0"`
	Amount          decimal.Decimal `json:"amount"`
	IntervalPeriods int             `json:"interval_periods" validate:"gte=0"`
	AnnualAmount    decimal.Decimal `json:"annual_amount"`
	AnnualMonth     int             `json:"annual_month" validate:"gte=0,lte=12"`
}

// Event DTOs

type AddRateChangeRequest struct {
	EffectiveDate time.Time       `json:"effective_date" validate:"required"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
}

type AddPrepaymentRequest struct {
	Date     time.Time       `json:"date" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Note     string          `json:"note,omitempty"`
	Strategy string          `json:"strategy,omitempty" validate:"omitempty,oneof=reduce_tenure reduce_installment"`
}

type AddPaymentRequest struct {
	Date   time.Time       `json:"date" validate:"required"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
