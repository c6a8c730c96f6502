// Package engine computes loan amortization schedules and ledgers. Both the
// forward-looking projection and the historical reconciliation are
// configurations of one period-stepping state machine: they share the same
// interest, principal and clamping arithmetic and differ only in where the
// installment comes from and how far the horizon extends.
//
// The engine is a pure function over its inputs: no clock, no I/O, no shared
// state. Identical inputs produce identical outputs.
package engine

import (
	"time"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	"github.com/hpratama/loan-ledger-engine/pkg/dates"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"

	"github.com/shopspring/decimal"
)

// MaxPeriods caps schedule generation at 50 years of monthly periods. The
// cap guarantees termination for pathological inputs (e.g. an installment
// too small to ever cover interest); hitting it is not an error.
const MaxPeriods = 600

// Balances within half a cent of zero are treated as paid off.
var paidOffEpsilon = decimal.New(5, -3)

type installmentSource int

const (
	// recomputingInstallment re-amortizes the installment whenever a rate
	// change or reduce-installment prepayment lands (projection).
	recomputingInstallment installmentSource = iota
	// recordedInstallment uses the summed payments actually recorded for a
	// month, falling back to the loan default (reconciliation).
	recordedInstallment
)

type horizonPolicy int

const (
	toPayoffOrCap horizonPolicy = iota
	toCurrentMonth
)

type stepperConfig struct {
	terms             domain.LoanTerms
	rates             *rateTimeline
	prepayments       MonthlyTotals
	reduceInstallment map[string]bool
	rule              *domain.RecurringPrepaymentRule
	payments          MonthlyTotals
	source            installmentSource
	horizon           horizonPolicy
	currentMonth      time.Time
}

// runSchedule advances period by period from the loan's start month until
// payoff, the period cap, or the configured horizon. Ordering within a
// period is fixed: rate changes apply first, then prepayments, then interest
// accrues on the post-prepayment balance.
func runSchedule(cfg stepperConfig) (*domain.Schedule, error) {
	balance := cfg.terms.Principal
	month := dates.MonthOf(cfg.terms.StartDate)
	installment := cfg.terms.DefaultInstallment

	if cfg.source == recomputingInstallment && !installment.IsPositive() {
		rate, ok := cfg.rates.rateFor(month)
		if !ok {
			return nil, customError.WrapNoRateInEffect(dates.MonthKey(month))
		}
		installment = AnnuityInstallment(balance, rate, cfg.terms.TenureMonths)
	}

	entries := make([]domain.PeriodEntry, 0, cfg.terms.TenureMonths)
	termination := domain.TerminationCap

	for period := 1; period <= MaxPeriods; period++ {
		if cfg.horizon == toCurrentMonth && month.After(cfg.currentMonth) {
			termination = domain.TerminationHorizon
			break
		}

		rate, ok := cfg.rates.rateFor(month)
		if !ok {
			return nil, customError.WrapNoRateInEffect(dates.MonthKey(month))
		}

		opening := balance

		// Rate changes apply before prepayments. Forecast installments are
		// re-amortized over the remaining tenure; recorded installments are
		// historical facts and never recomputed.
		if cfg.source == recomputingInstallment && cfg.rates.changedIn(month) {
			installment = AnnuityInstallment(balance, rate, remainingPeriods(cfg.terms.TenureMonths, period))
		}

		if cfg.source == recordedInstallment {
			if paid, ok := cfg.payments[dates.MonthKey(month)]; ok {
				installment = paid
			} else {
				installment = cfg.terms.DefaultInstallment
			}
		}

		prepayment := cfg.prepayments.For(month)
		if cfg.source == recomputingInstallment && cfg.rule != nil {
			prepayment = prepayment.Add(recurringPrepayment(cfg.rule, period, month))
		}

		// Prepayments reduce principal before interest accrues. A prepayment
		// covering the whole balance closes the loan this period; the amount
		// applied is clamped so the closing balance lands exactly at zero.
		if balance.Sub(prepayment).LessThanOrEqual(paidOffEpsilon) {
			entries = append(entries, emit(domain.PeriodEntry{
				Period:         period,
				Month:          month,
				OpeningBalance: opening,
				Prepayment:     balance,
				RatePercent:    rate,
			}))
			termination = domain.TerminationPayoff
			break
		}

		balance = balance.Sub(prepayment)

		// A reduce-installment prepayment re-amortizes on the reduced
		// balance, after any rate-driven recompute this period.
		if cfg.source == recomputingInstallment && cfg.reduceInstallment[dates.MonthKey(month)] {
			installment = AnnuityInstallment(balance, rate, remainingPeriods(cfg.terms.TenureMonths, period))
		}

		interest := MonthlyInterest(balance, rate)
		applied := installment
		principal := applied.Sub(interest)

		warning := ""
		if principal.IsNegative() {
			// Negative amortization: the balance never grows.
			principal = decimal.Zero
			warning = domain.WarningNegativeAmortization
		}

		// The closing period pays exactly balance + interest rather than the
		// nominal installment, so the balance lands at zero, not below.
		if balance.Sub(principal).LessThanOrEqual(paidOffEpsilon) {
			principal = balance
			applied = balance.Add(interest)
		}

		balance = balance.Sub(principal)

		entries = append(entries, emit(domain.PeriodEntry{
			Period:         period,
			Month:          month,
			OpeningBalance: opening,
			Installment:    applied,
			Interest:       interest,
			Principal:      principal,
			Prepayment:     prepayment,
			ClosingBalance: balance,
			RatePercent:    rate,
			Warning:        warning,
		}))

		if !balance.IsPositive() {
			termination = domain.TerminationPayoff
			break
		}

		month = dates.NextMonth(month)
	}

	return &domain.Schedule{Entries: entries, Termination: termination}, nil
}

// remainingPeriods is the re-amortization denominator for period: the nominal
// tenure less the periods already elapsed, never below one.
func remainingPeriods(tenure, period int) int {
	remaining := tenure - period + 1
	if remaining < 1 {
		return 1
	}
	return remaining
}

// recurringPrepayment evaluates a rule for one period: the fixed amount on
// its interval plus the annual lump sum in its calendar month.
func recurringPrepayment(rule *domain.RecurringPrepaymentRule, period int, month time.Time) decimal.Decimal {
	total := decimal.Zero
	if rule.Amount.IsPositive() && period >= rule.StartPeriod &&
		(period-rule.StartPeriod)%rule.IntervalPeriods == 0 {
		total = total.Add(rule.Amount)
	}
	if rule.AnnualAmount.IsPositive() && int(month.Month()) == rule.AnnualMonth {
		total = total.Add(rule.AnnualAmount)
	}
	return total
}

// emit rounds every currency figure to 2 decimal places. Internal
// accumulation stays unrounded so rounding error never compounds.
func emit(entry domain.PeriodEntry) domain.PeriodEntry {
	entry.OpeningBalance = entry.OpeningBalance.Round(2)
	entry.Installment = entry.Installment.Round(2)
	entry.Interest = entry.Interest.Round(2)
	entry.Principal = entry.Principal.Round(2)
	entry.Prepayment = entry.Prepayment.Round(2)
	entry.ClosingBalance = entry.ClosingBalance.Round(2)
	return entry
}
