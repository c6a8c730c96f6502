package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// Loan represents a loan entity as persisted
type Loan struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	LoanID             string          `json:"loan_id" db:"loan_id"`
	Principal          decimal.Decimal `json:"principal" db:"principal"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	TenureMonths       int             `json:"tenure_months" db:"tenure_months"`
	DefaultInstallment decimal.Decimal `json:"default_installment" db:"default_installment"`
	Status             string          `json:"status" db:"status"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanTerms is the immutable engine input derived from a loan. The engines
// never see the persisted entity, only this snapshot.
type LoanTerms struct {
	Principal          decimal.Decimal
	StartDate          time.Time
	TenureMonths       int
	DefaultInstallment decimal.Decimal
}

// Terms extracts the engine input snapshot from a persisted loan.
func (l *Loan) Terms() LoanTerms {
	return LoanTerms{
		Principal:          l.Principal,
		StartDate:          l.StartDate,
		TenureMonths:       l.TenureMonths,
		DefaultInstallment: l.DefaultInstallment,
	}
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanID             string          `json:"loan_id" validate:"required"`
	Principal          decimal.Decimal `json:"principal" validate:"required"`
	StartDate          time.Time       `json:"start_date" validate:"required"`
	TenureMonths       int             `json:"tenure_months" validate:"required,gt=0"`
	DefaultInstallment decimal.Decimal `json:"default_installment"`
	AnnualRate         decimal.Decimal `json:"annual_rate"`
}

type CreateLoanResponse struct {
	Loan   *Loan          `json:"loan"`
	Ledger []PeriodEntry  `json:"ledger"`
	Summary SummaryMetrics `json:"summary"`
}

type LedgerResponse struct {
	LoanID  string         `json:"loan_id"`
	Entries []PeriodEntry  `json:"entries"`
	Summary SummaryMetrics `json:"summary"`
}

type ProjectionRequest struct {
	Prepayments []Prepayment             `json:"prepayments,omitempty"`
	Rule        *RecurringPrepaymentRule `json:"rule,omitempty"`
}

type ProjectionResponse struct {
	LoanID  string         `json:"loan_id"`
	Entries []PeriodEntry  `json:"entries"`
	Summary SummaryMetrics `json:"summary"`
}

// ProjectionComparison reports the effect of a prepayment scenario against
// the plain schedule of the same loan.
type ProjectionComparison struct {
	LoanID        string          `json:"loan_id"`
	Baseline      SummaryMetrics  `json:"baseline"`
	Scenario      SummaryMetrics  `json:"scenario"`
	InterestSaved decimal.Decimal `json:"interest_saved"`
	PeriodsSaved  int             `json:"periods_saved"`
}
