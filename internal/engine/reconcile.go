package engine

import (
	"time"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	"github.com/hpratama/loan-ledger-engine/pkg/dates"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
)

// ReconciliationInput replays recorded history. CurrentMonth is injected
// rather than read from the clock so the engine stays deterministic; the
// ledger never contains a row for a month after it.
type ReconciliationInput struct {
	Terms        domain.LoanTerms
	RateChanges  []domain.RateChange
	Prepayments  []domain.Prepayment
	Payments     []domain.RecordedPayment
	CurrentMonth time.Time
}

// Reconcile produces the authoritative historical ledger from the loan's
// start month through CurrentMonth. Each month's installment is the sum of
// payments recorded for it, falling back to the loan default; installments
// are historical facts and are never recomputed on rate changes.
func Reconcile(in ReconciliationInput) (*domain.Schedule, error) {
	if !in.Terms.Principal.IsPositive() {
		return nil, customError.WrapInvalidLoanTerms("principal must be positive", customError.ErrInvalidPrincipal)
	}
	if !in.Terms.DefaultInstallment.IsPositive() {
		return nil, customError.WrapInvalidLoanTerms("default installment must be positive", customError.ErrInvalidInstallment)
	}

	rates, err := newRateTimeline(in.RateChanges)
	if err != nil {
		return nil, err
	}

	return runSchedule(stepperConfig{
		terms:        in.Terms,
		rates:        rates,
		prepayments:  AggregatePrepayments(in.Prepayments),
		payments:     AggregatePayments(in.Payments),
		source:       recordedInstallment,
		horizon:      toCurrentMonth,
		currentMonth: dates.MonthOf(in.CurrentMonth),
	})
}
