package repository

import (
	"context"

	"github.com/hpratama/loan-ledger-engine/internal/domain"

	"github.com/jmoiron/sqlx"
)

type eventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) AddRateChange(ctx context.Context, change *domain.RateChange) error {
	query := `
		INSERT INTO rate_changes (id, loan_id, effective_date, annual_rate, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		change.ID,
		change.LoanID,
		change.EffectiveDate,
		change.AnnualRate,
		change.CreatedAt,
	)

	return err
}

func (r *eventRepository) ListRateChanges(ctx context.Context, loanID string) ([]domain.RateChange, error) {
	query := `
		SELECT id, loan_id, effective_date, annual_rate, created_at
		FROM rate_changes
		WHERE loan_id = $1
		ORDER BY effective_date
	`

	var changes []domain.RateChange
	if err := r.db.SelectContext(ctx, &changes, query, loanID); err != nil {
		return nil, err
	}

	return changes, nil
}

func (r *eventRepository) DeleteRateChange(ctx context.Context, loanID string, id string) error {
	query := `DELETE FROM rate_changes WHERE loan_id = $1 AND id = $2`

	_, err := r.db.ExecContext(ctx, query, loanID, id)
	return err
}

func (r *eventRepository) AddPrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	query := `
		INSERT INTO prepayments (id, loan_id, date, amount, note, strategy, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		prepayment.ID,
		prepayment.LoanID,
		prepayment.Date,
		prepayment.Amount,
		prepayment.Note,
		prepayment.Strategy,
		prepayment.CreatedAt,
	)

	return err
}

func (r *eventRepository) ListPrepayments(ctx context.Context, loanID string) ([]domain.Prepayment, error) {
	query := `
		SELECT id, loan_id, date, amount, note, strategy, created_at
		FROM prepayments
		WHERE loan_id = $1
		ORDER BY date
	`

	var prepayments []domain.Prepayment
	if err := r.db.SelectContext(ctx, &prepayments, query, loanID); err != nil {
		return nil, err
	}

	return prepayments, nil
}

func (r *eventRepository) DeletePrepayment(ctx context.Context, loanID string, id string) error {
	query := `DELETE FROM prepayments WHERE loan_id = $1 AND id = $2`

	_, err := r.db.ExecContext(ctx, query, loanID, id)
	return err
}

func (r *eventRepository) AddPayment(ctx context.Context, payment *domain.RecordedPayment) error {
	query := `
		INSERT INTO payments (id, loan_id, date, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.Date,
		payment.Amount,
		payment.CreatedAt,
	)

	return err
}

func (r *eventRepository) ListPayments(ctx context.Context, loanID string) ([]domain.RecordedPayment, error) {
	query := `
		SELECT id, loan_id, date, amount, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY date
	`

	var payments []domain.RecordedPayment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *eventRepository) DeletePayment(ctx context.Context, loanID string, id string) error {
	query := `DELETE FROM payments WHERE loan_id = $1 AND id = $2`

	_, err := r.db.ExecContext(ctx, query, loanID, id)
	return err
}
