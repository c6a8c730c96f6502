package repository

import (
	"context"
	"time"

	"github.com/hpratama/loan-ledger-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, loan_id, principal, start_date, tenure_months, default_installment, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.LoanID,
		loan.Principal,
		loan.StartDate,
		loan.TenureMonths,
		loan.DefaultInstallment,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `
		SELECT id, loan_id, principal, start_date, tenure_months, default_installment, status, created_at, updated_at
		FROM loans
		WHERE loan_id = $1
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, query, loanID)
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := `
		SELECT id, loan_id, principal, start_date, tenure_months, default_installment, status, created_at, updated_at
		FROM loans
		WHERE status = $1
		ORDER BY created_at
	`

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive)
	if err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, loanID string, status string) error {
	query := `
		UPDATE loans
		SET status = $2, updated_at = $3
		WHERE loan_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, loanID, status, time.Now())
	return err
}

// ReplaceLedger deletes the existing snapshot and inserts the new rows in
// one transaction, so readers never observe a partially-updated ledger.
func (r *loanRepository) ReplaceLedger(ctx context.Context, loanID string, entries []domain.PeriodEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE loan_id = $1`, loanID); err != nil {
		return err
	}

	query := `
		INSERT INTO ledger_entries (loan_id, period_index, month, opening_balance, installment, interest, principal, prepayment, closing_balance, rate_percent, warning)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, entry := range entries {
		_, err = tx.ExecContext(ctx, query,
			loanID,
			entry.Period,
			entry.Month,
			entry.OpeningBalance,
			entry.Installment,
			entry.Interest,
			entry.Principal,
			entry.Prepayment,
			entry.ClosingBalance,
			entry.RatePercent,
			entry.Warning,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetLedger(ctx context.Context, loanID string) ([]domain.PeriodEntry, error) {
	query := `
		SELECT period_index, month, opening_balance, installment, interest, principal, prepayment, closing_balance, rate_percent, warning
		FROM ledger_entries
		WHERE loan_id = $1
		ORDER BY period_index
	`

	var entries []domain.PeriodEntry
	err := r.db.SelectContext(ctx, &entries, query, loanID)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
