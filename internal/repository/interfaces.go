package repository

import (
	"context"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
)

// LoanRepository defines the interface for loan and cached ledger operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByLoanID retrieves a loan by its loan ID
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListActive retrieves all loans not yet closed
	ListActive(ctx context.Context) ([]*domain.Loan, error)

	// UpdateStatus updates a loan's status
	UpdateStatus(ctx context.Context, loanID string, status string) error

	// ReplaceLedger atomically replaces the cached ledger snapshot for a loan
	ReplaceLedger(ctx context.Context, loanID string, entries []domain.PeriodEntry) error

	// GetLedger retrieves the cached ledger snapshot for a loan
	GetLedger(ctx context.Context, loanID string) ([]domain.PeriodEntry, error)
}

// EventRepository defines the interface for the loan event tables that feed
// the reconciliation engine
type EventRepository interface {
	// AddRateChange records a rate change
	AddRateChange(ctx context.Context, change *domain.RateChange) error

	// ListRateChanges retrieves all rate changes for a loan
	ListRateChanges(ctx context.Context, loanID string) ([]domain.RateChange, error)

	// DeleteRateChange removes a rate change
	DeleteRateChange(ctx context.Context, loanID string, id string) error

	// AddPrepayment records a prepayment
	AddPrepayment(ctx context.Context, prepayment *domain.Prepayment) error

	// ListPrepayments retrieves all prepayments for a loan
	ListPrepayments(ctx context.Context, loanID string) ([]domain.Prepayment, error)

	// DeletePrepayment removes a prepayment
	DeletePrepayment(ctx context.Context, loanID string, id string) error

	// AddPayment records an installment payment
	AddPayment(ctx context.Context, payment *domain.RecordedPayment) error

	// ListPayments retrieves all recorded payments for a loan
	ListPayments(ctx context.Context, loanID string) ([]domain.RecordedPayment, error)

	// DeletePayment removes a recorded payment
	DeletePayment(ctx context.Context, loanID string, id string) error
}
