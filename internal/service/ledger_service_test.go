package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/loan-ledger-engine/internal/domain"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, loanID string, status string) error {
	args := m.Called(ctx, loanID, status)
	return args.Error(0)
}

func (m *MockLoanRepository) ReplaceLedger(ctx context.Context, loanID string, entries []domain.PeriodEntry) error {
	args := m.Called(ctx, loanID, entries)
	return args.Error(0)
}

func (m *MockLoanRepository) GetLedger(ctx context.Context, loanID string) ([]domain.PeriodEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PeriodEntry), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) AddRateChange(ctx context.Context, change *domain.RateChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

func (m *MockEventRepository) ListRateChanges(ctx context.Context, loanID string) ([]domain.RateChange, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateChange), args.Error(1)
}

func (m *MockEventRepository) DeleteRateChange(ctx context.Context, loanID string, id string) error {
	args := m.Called(ctx, loanID, id)
	return args.Error(0)
}

func (m *MockEventRepository) AddPrepayment(ctx context.Context, prepayment *domain.Prepayment) error {
	args := m.Called(ctx, prepayment)
	return args.Error(0)
}

func (m *MockEventRepository) ListPrepayments(ctx context.Context, loanID string) ([]domain.Prepayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Prepayment), args.Error(1)
}

func (m *MockEventRepository) DeletePrepayment(ctx context.Context, loanID string, id string) error {
	args := m.Called(ctx, loanID, id)
	return args.Error(0)
}

func (m *MockEventRepository) AddPayment(ctx context.Context, payment *domain.RecordedPayment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockEventRepository) ListPayments(ctx context.Context, loanID string) ([]domain.RecordedPayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RecordedPayment), args.Error(1)
}

func (m *MockEventRepository) DeletePayment(ctx context.Context, loanID string, id string) error {
	args := m.Called(ctx, loanID, id)
	return args.Error(0)
}

func monthDate(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func activeLoan(loanID string) *domain.Loan {
	return &domain.Loan{
		LoanID:             loanID,
		Principal:          decimal.NewFromInt(600000),
		StartDate:          monthDate(2026, time.January),
		TenureMonths:       60,
		DefaultInstallment: decimal.NewFromInt(13000),
		Status:             domain.LoanStatusActive,
	}
}

func openingRate(loanID string) []domain.RateChange {
	return []domain.RateChange{
		{
			LoanID:        loanID,
			EffectiveDate: monthDate(2026, time.January),
			AnnualRate:    decimal.NewFromInt(11),
		},
	}
}

func newTestService(loanRepo *MockLoanRepository, eventRepo *MockEventRepository, now time.Time) *LedgerService {
	svc := NewLedgerService(loanRepo, eventRepo, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func TestRecomputeLedgerReplacesSnapshot(t *testing.T) {
	loanID := "LOAN001"
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoan(loanID), nil)
	eventRepo.On("ListRateChanges", mock.Anything, loanID).Return(openingRate(loanID), nil)
	eventRepo.On("ListPrepayments", mock.Anything, loanID).Return([]domain.Prepayment{}, nil)
	eventRepo.On("ListPayments", mock.Anything, loanID).Return([]domain.RecordedPayment{}, nil)
	loanRepo.On("ReplaceLedger", mock.Anything, loanID, mock.MatchedBy(func(entries []domain.PeriodEntry) bool {
		// January through April 2026 inclusive.
		return len(entries) == 4
	})).Return(nil)

	svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC))

	entries, summary, err := svc.RecomputeLedger(context.Background(), loanID)

	require.NoError(t, err)
	assert.Len(t, entries, 4)
	assert.Equal(t, 4, summary.Tenure)
	assert.Nil(t, summary.CompletionMonth)
	assert.True(t, summary.OutstandingPrincipal.IsPositive())
	loanRepo.AssertExpectations(t)
	eventRepo.AssertExpectations(t)
}

func TestRecomputeLedgerClosesPaidOffLoan(t *testing.T) {
	loanID := "LOAN002"
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loan := &domain.Loan{
		LoanID:             loanID,
		Principal:          decimal.NewFromInt(30000),
		StartDate:          monthDate(2025, time.January),
		TenureMonths:       3,
		DefaultInstallment: decimal.NewFromFloat(10200.68),
		Status:             domain.LoanStatusActive,
	}

	loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(loan, nil)
	eventRepo.On("ListRateChanges", mock.Anything, loanID).Return([]domain.RateChange{
		{LoanID: loanID, EffectiveDate: monthDate(2025, time.January), AnnualRate: decimal.NewFromInt(12)},
	}, nil)
	eventRepo.On("ListPrepayments", mock.Anything, loanID).Return([]domain.Prepayment{}, nil)
	eventRepo.On("ListPayments", mock.Anything, loanID).Return([]domain.RecordedPayment{}, nil)
	loanRepo.On("ReplaceLedger", mock.Anything, loanID, mock.Anything).Return(nil)
	loanRepo.On("UpdateStatus", mock.Anything, loanID, domain.LoanStatusClosed).Return(nil)

	svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC))

	entries, summary, err := svc.RecomputeLedger(context.Background(), loanID)

	require.NoError(t, err)
	assert.Len(t, entries, 3)
	require.NotNil(t, summary.CompletionMonth)
	assert.True(t, summary.OutstandingPrincipal.IsZero())
	loanRepo.AssertExpectations(t)
}

func TestCreateLoan(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*MockLoanRepository, *MockEventRepository, string)
		request       func(string) *domain.CreateLoanRequest
		expectedError bool
		errorIs       error
	}{
		{
			name: "Success - loan, opening rate change and ledger",
			setupMocks: func(loanRepo *MockLoanRepository, eventRepo *MockEventRepository, loanID string) {
				loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(nil, sql.ErrNoRows).Once()
				loanRepo.On("Create", mock.Anything, mock.MatchedBy(func(loan *domain.Loan) bool {
					return loan.LoanID == loanID && loan.Status == domain.LoanStatusActive
				})).Return(nil)
				eventRepo.On("AddRateChange", mock.Anything, mock.MatchedBy(func(change *domain.RateChange) bool {
					return change.LoanID == loanID && change.EffectiveDate.Equal(monthDate(2026, time.March))
				})).Return(nil)
				// Recompute reloads the loan and its events.
				loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoanStarting(loanID, monthDate(2026, time.March)), nil)
				eventRepo.On("ListRateChanges", mock.Anything, loanID).Return([]domain.RateChange{
					{LoanID: loanID, EffectiveDate: monthDate(2026, time.March), AnnualRate: decimal.NewFromInt(11)},
				}, nil)
				eventRepo.On("ListPrepayments", mock.Anything, loanID).Return([]domain.Prepayment{}, nil)
				eventRepo.On("ListPayments", mock.Anything, loanID).Return([]domain.RecordedPayment{}, nil)
				loanRepo.On("ReplaceLedger", mock.Anything, loanID, mock.MatchedBy(func(entries []domain.PeriodEntry) bool {
					return len(entries) == 2 // March and April 2026
				})).Return(nil)
			},
			request: func(loanID string) *domain.CreateLoanRequest {
				return &domain.CreateLoanRequest{
					LoanID:             loanID,
					Principal:          decimal.NewFromInt(600000),
					StartDate:          monthDate(2026, time.March),
					TenureMonths:       60,
					DefaultInstallment: decimal.NewFromInt(13000),
					AnnualRate:         decimal.NewFromInt(11),
				}
			},
		},
		{
			name: "Failure - loan already exists",
			setupMocks: func(loanRepo *MockLoanRepository, eventRepo *MockEventRepository, loanID string) {
				loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoan(loanID), nil)
			},
			request: func(loanID string) *domain.CreateLoanRequest {
				return &domain.CreateLoanRequest{
					LoanID:             loanID,
					Principal:          decimal.NewFromInt(600000),
					StartDate:          monthDate(2026, time.March),
					TenureMonths:       60,
					DefaultInstallment: decimal.NewFromInt(13000),
					AnnualRate:         decimal.NewFromInt(11),
				}
			},
			expectedError: true,
			errorIs:       customError.ErrLoanAlreadyExists,
		},
		{
			name: "Failure - non-positive principal",
			setupMocks: func(loanRepo *MockLoanRepository, eventRepo *MockEventRepository, loanID string) {
				loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(nil, sql.ErrNoRows)
			},
			request: func(loanID string) *domain.CreateLoanRequest {
				return &domain.CreateLoanRequest{
					LoanID:             loanID,
					Principal:          decimal.Zero,
					StartDate:          monthDate(2026, time.March),
					TenureMonths:       60,
					DefaultInstallment: decimal.NewFromInt(13000),
				}
			},
			expectedError: true,
			errorIs:       customError.ErrInvalidPrincipal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loanRepo := &MockLoanRepository{}
			eventRepo := &MockEventRepository{}
			loanID := "LOAN100"
			tt.setupMocks(loanRepo, eventRepo, loanID)

			svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC))

			result, err := svc.CreateLoan(context.Background(), tt.request(loanID))

			if tt.expectedError {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errorIs)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, loanID, result.Loan.LoanID)
				assert.Len(t, result.Ledger, 2)
			}
			loanRepo.AssertExpectations(t)
			eventRepo.AssertExpectations(t)
		})
	}
}

func activeLoanStarting(loanID string, start time.Time) *domain.Loan {
	loan := activeLoan(loanID)
	loan.StartDate = start
	return loan
}

func TestAddPaymentRejectsNonPositiveAmount(t *testing.T) {
	loanID := "LOAN003"
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoan(loanID), nil)

	svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC))

	result, err := svc.AddPayment(context.Background(), loanID, &domain.AddPaymentRequest{
		Date:   monthDate(2026, time.February),
		Amount: decimal.Zero,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrInvalidEventAmount)
	assert.Nil(t, result)
	eventRepo.AssertNotCalled(t, "AddPayment", mock.Anything, mock.Anything)
}

func TestAddRateChangeRejectsDuplicateDate(t *testing.T) {
	loanID := "LOAN004"
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoan(loanID), nil)
	eventRepo.On("ListRateChanges", mock.Anything, loanID).Return(openingRate(loanID), nil)

	svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC))

	result, err := svc.AddRateChange(context.Background(), loanID, &domain.AddRateChangeRequest{
		EffectiveDate: monthDate(2026, time.January),
		AnnualRate:    decimal.NewFromInt(13),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrDuplicateRateChange)
	assert.Nil(t, result)
	eventRepo.AssertNotCalled(t, "AddRateChange", mock.Anything, mock.Anything)
}

func TestGetLedgerLoanNotFound(t *testing.T) {
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loanRepo.On("GetByLoanID", mock.Anything, "MISSING").Return(nil, sql.ErrNoRows)

	svc := newTestService(loanRepo, eventRepo, time.Now())

	result, err := svc.GetLedger(context.Background(), "MISSING")

	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrLoanNotFound)
	assert.Nil(t, result)
}

func TestCompareReportsSavings(t *testing.T) {
	loanID := "LOAN005"
	loanRepo := &MockLoanRepository{}
	eventRepo := &MockEventRepository{}

	loanRepo.On("GetByLoanID", mock.Anything, loanID).Return(activeLoan(loanID), nil)
	eventRepo.On("ListRateChanges", mock.Anything, loanID).Return(openingRate(loanID), nil)
	eventRepo.On("ListPrepayments", mock.Anything, loanID).Return([]domain.Prepayment{}, nil)

	svc := newTestService(loanRepo, eventRepo, time.Date(2026, time.April, 15, 0, 0, 0, 0, time.UTC))

	result, err := svc.Compare(context.Background(), loanID, &domain.ProjectionRequest{
		Prepayments: []domain.Prepayment{
			{Date: monthDate(2027, time.January), Amount: decimal.NewFromInt(100000)},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.InterestSaved.IsPositive(), "prepayment should save interest, saved %s", result.InterestSaved)
	assert.Positive(t, result.PeriodsSaved)
	assert.Less(t, result.Scenario.Tenure, result.Baseline.Tenure)
}
