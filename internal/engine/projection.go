package engine

import (
	"github.com/hpratama/loan-ledger-engine/internal/domain"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
)

// ProjectionInput is everything a what-if schedule needs. Prepayments may be
// stored rows, hypothetical ones, or a mix; the rule is optional.
type ProjectionInput struct {
	Terms       domain.LoanTerms
	RateChanges []domain.RateChange
	Prepayments []domain.Prepayment
	Rule        *domain.RecurringPrepaymentRule
}

// Project generates the full forward schedule for a loan from its start
// month to payoff or the period cap. The installment starts from the loan
// default when set, otherwise from the annuity formula over the nominal
// tenure, and is re-amortized on rate changes and reduce-installment
// prepayments.
func Project(in ProjectionInput) (*domain.Schedule, error) {
	if !in.Terms.Principal.IsPositive() {
		return nil, customError.WrapInvalidLoanTerms("principal must be positive", customError.ErrInvalidPrincipal)
	}
	if in.Terms.TenureMonths <= 0 {
		return nil, customError.WrapInvalidLoanTerms("tenure must be positive", customError.ErrInvalidTenure)
	}
	if err := validateRule(in.Rule); err != nil {
		return nil, err
	}

	rates, err := newRateTimeline(in.RateChanges)
	if err != nil {
		return nil, err
	}

	return runSchedule(stepperConfig{
		terms:             in.Terms,
		rates:             rates,
		prepayments:       AggregatePrepayments(in.Prepayments),
		reduceInstallment: reduceInstallmentMonths(in.Prepayments),
		rule:              in.Rule,
		source:            recomputingInstallment,
		horizon:           toPayoffOrCap,
	})
}

func validateRule(rule *domain.RecurringPrepaymentRule) error {
	if rule == nil {
		return nil
	}
	if rule.Amount.IsNegative() || rule.AnnualAmount.IsNegative() {
		return customError.NewBusinessError(customError.ErrCodeInvalidRecurring,
			"recurring amounts must not be negative", customError.ErrInvalidRecurringRule)
	}
	if rule.Amount.IsPositive() && (rule.StartPeriod < 1 || rule.IntervalPeriods < 1) {
		return customError.NewBusinessError(customError.ErrCodeInvalidRecurring,
			"start period and interval must be at least 1", customError.ErrInvalidRecurringRule)
	}
	if rule.AnnualAmount.IsPositive() && (rule.AnnualMonth < 1 || rule.AnnualMonth > 12) {
		return customError.NewBusinessError(customError.ErrCodeInvalidRecurring,
			"annual month must be 1..12", customError.ErrInvalidRecurringRule)
	}
	return nil
}
