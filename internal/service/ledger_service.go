package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hpratama/loan-ledger-engine/internal/config"
	"github.com/hpratama/loan-ledger-engine/internal/domain"
	"github.com/hpratama/loan-ledger-engine/internal/engine"
	"github.com/hpratama/loan-ledger-engine/internal/repository"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// LedgerService owns the loan event tables and the cached ledger derived
// from them. Every event mutation triggers a full synchronous recompute, so
// the stored ledger is always consistent with the events that produced it.
type LedgerService struct {
	LoanRepo  repository.LoanRepository
	EventRepo repository.EventRepository
	redis     *redis.Client
	config    *config.Config
	now       func() time.Time
}

func NewLedgerService(
	loanRepo repository.LoanRepository,
	eventRepo repository.EventRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LedgerService {
	return &LedgerService{
		LoanRepo:  loanRepo,
		EventRepo: eventRepo,
		redis:     redisClient,
		config:    cfg,
		now:       time.Now,
	}
}

// CreateLoan stores a new loan together with its opening rate change and
// computes the initial ledger.
func (s *LedgerService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.CreateLoanResponse, error) {
	existing, err := s.LoanRepo.GetByLoanID(ctx, request.LoanID)
	if err == nil && existing != nil {
		return nil, customError.WrapLoanAlreadyExists(request.LoanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	if !request.Principal.IsPositive() {
		return nil, customError.WrapInvalidLoanTerms("principal must be positive", customError.ErrInvalidPrincipal)
	}
	if request.TenureMonths <= 0 {
		return nil, customError.WrapInvalidLoanTerms("tenure must be positive", customError.ErrInvalidTenure)
	}
	if !request.DefaultInstallment.IsPositive() {
		return nil, customError.WrapInvalidLoanTerms("default installment must be positive", customError.ErrInvalidInstallment)
	}
	if request.AnnualRate.IsNegative() {
		return nil, customError.WrapInvalidLoanTerms("annual rate must not be negative", nil)
	}

	now := s.now()
	loan := &domain.Loan{
		ID:                 uuid.New(),
		LoanID:             request.LoanID,
		Principal:          request.Principal,
		StartDate:          request.StartDate,
		TenureMonths:       request.TenureMonths,
		DefaultInstallment: request.DefaultInstallment,
		Status:             domain.LoanStatusActive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err = s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	// The opening rate change guarantees rate coverage from the first
	// period onward.
	change := &domain.RateChange{
		ID:            uuid.New(),
		LoanID:        request.LoanID,
		EffectiveDate: request.StartDate,
		AnnualRate:    request.AnnualRate,
		CreatedAt:     now,
	}
	if err = s.EventRepo.AddRateChange(ctx, change); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	ledger, summary, err := s.RecomputeLedger(ctx, request.LoanID)
	if err != nil {
		return nil, err
	}

	return &domain.CreateLoanResponse{Loan: loan, Ledger: ledger, Summary: summary}, nil
}

// AddRateChange records a rate change and recomputes the ledger.
func (s *LedgerService) AddRateChange(ctx context.Context, loanID string, request *domain.AddRateChangeRequest) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if request.AnnualRate.IsNegative() {
		return nil, customError.WrapInvalidLoanTerms("annual rate must not be negative", nil)
	}

	changes, err := s.EventRepo.ListRateChanges(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	for _, c := range changes {
		if c.EffectiveDate.Equal(request.EffectiveDate) {
			return nil, customError.WrapDuplicateRateChange(request.EffectiveDate.Format("2006-01-02"))
		}
	}

	change := &domain.RateChange{
		ID:            uuid.New(),
		LoanID:        loanID,
		EffectiveDate: request.EffectiveDate,
		AnnualRate:    request.AnnualRate,
		CreatedAt:     s.now(),
	}
	if err := s.EventRepo.AddRateChange(ctx, change); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.recomputeResponse(ctx, loanID)
}

// AddPrepayment records a prepayment and recomputes the ledger.
func (s *LedgerService) AddPrepayment(ctx context.Context, loanID string, request *domain.AddPrepaymentRequest) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if !request.Amount.IsPositive() {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidEventAmount,
			"prepayment amount must be positive", customError.ErrInvalidEventAmount)
	}

	prepayment := &domain.Prepayment{
		ID:        uuid.New(),
		LoanID:    loanID,
		Date:      request.Date,
		Amount:    request.Amount,
		Note:      request.Note,
		Strategy:  request.Strategy,
		CreatedAt: s.now(),
	}
	if err := s.EventRepo.AddPrepayment(ctx, prepayment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.recomputeResponse(ctx, loanID)
}

// AddPayment records an installment payment and recomputes the ledger.
func (s *LedgerService) AddPayment(ctx context.Context, loanID string, request *domain.AddPaymentRequest) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if !request.Amount.IsPositive() {
		return nil, customError.NewBusinessError(customError.ErrCodeInvalidEventAmount,
			"payment amount must be positive", customError.ErrInvalidEventAmount)
	}

	payment := &domain.RecordedPayment{
		ID:        uuid.New(),
		LoanID:    loanID,
		Date:      request.Date,
		Amount:    request.Amount,
		CreatedAt: s.now(),
	}
	if err := s.EventRepo.AddPayment(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return s.recomputeResponse(ctx, loanID)
}

// DeleteRateChange removes a rate change and recomputes the ledger.
func (s *LedgerService) DeleteRateChange(ctx context.Context, loanID, id string) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if err := s.EventRepo.DeleteRateChange(ctx, loanID, id); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return s.recomputeResponse(ctx, loanID)
}

// DeletePrepayment removes a prepayment and recomputes the ledger.
func (s *LedgerService) DeletePrepayment(ctx context.Context, loanID, id string) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if err := s.EventRepo.DeletePrepayment(ctx, loanID, id); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return s.recomputeResponse(ctx, loanID)
}

// DeletePayment removes a recorded payment and recomputes the ledger.
func (s *LedgerService) DeletePayment(ctx context.Context, loanID, id string) (*domain.LedgerResponse, error) {
	if _, err := s.getLoan(ctx, loanID); err != nil {
		return nil, err
	}
	if err := s.EventRepo.DeletePayment(ctx, loanID, id); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return s.recomputeResponse(ctx, loanID)
}

// RecomputeLedger snapshots the loan's event tables, replays them through
// the reconciliation engine up to the current month, and replaces the cached
// ledger wholesale.
func (s *LedgerService) RecomputeLedger(ctx context.Context, loanID string) ([]domain.PeriodEntry, domain.SummaryMetrics, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, domain.SummaryMetrics{}, err
	}

	rateChanges, err := s.EventRepo.ListRateChanges(ctx, loanID)
	if err != nil {
		return nil, domain.SummaryMetrics{}, customError.WrapDatabaseError(err)
	}
	prepayments, err := s.EventRepo.ListPrepayments(ctx, loanID)
	if err != nil {
		return nil, domain.SummaryMetrics{}, customError.WrapDatabaseError(err)
	}
	payments, err := s.EventRepo.ListPayments(ctx, loanID)
	if err != nil {
		return nil, domain.SummaryMetrics{}, customError.WrapDatabaseError(err)
	}

	schedule, err := engine.Reconcile(engine.ReconciliationInput{
		Terms:        loan.Terms(),
		RateChanges:  rateChanges,
		Prepayments:  prepayments,
		Payments:     payments,
		CurrentMonth: s.now(),
	})
	if err != nil {
		return nil, domain.SummaryMetrics{}, err
	}

	if err := s.LoanRepo.ReplaceLedger(ctx, loanID, schedule.Entries); err != nil {
		return nil, domain.SummaryMetrics{}, customError.WrapDatabaseError(err)
	}

	summary := engine.Summarize(schedule.Entries, loan.Principal)

	if summary.CompletionMonth != nil && loan.Status == domain.LoanStatusActive {
		if err := s.LoanRepo.UpdateStatus(ctx, loanID, domain.LoanStatusClosed); err != nil {
			return nil, domain.SummaryMetrics{}, customError.WrapDatabaseError(err)
		}
	}

	s.cacheSummary(ctx, loanID, summary)

	return schedule.Entries, summary, nil
}

// GetLedger returns the cached ledger snapshot and its summary.
func (s *LedgerService) GetLedger(ctx context.Context, loanID string) (*domain.LedgerResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	entries, err := s.LoanRepo.GetLedger(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.LedgerResponse{
		LoanID:  loanID,
		Entries: entries,
		Summary: engine.Summarize(entries, loan.Principal),
	}, nil
}

// GetSummary returns the loan's summary metrics, served from redis when the
// cache is warm.
func (s *LedgerService) GetSummary(ctx context.Context, loanID string) (*domain.SummaryMetrics, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, summaryCacheKey(loanID)).Result()
		if err == nil {
			var summary domain.SummaryMetrics
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		}
	}

	ledger, err := s.GetLedger(ctx, loanID)
	if err != nil {
		return nil, err
	}

	s.cacheSummary(ctx, loanID, ledger.Summary)
	return &ledger.Summary, nil
}

// Project runs a what-if schedule for a stored loan: its recorded rate
// history plus any hypothetical prepayments and recurring rule from the
// request, on top of the prepayments already on file.
func (s *LedgerService) Project(ctx context.Context, loanID string, request *domain.ProjectionRequest) (*domain.ProjectionResponse, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rateChanges, err := s.EventRepo.ListRateChanges(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	stored, err := s.EventRepo.ListPrepayments(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	schedule, err := engine.Project(engine.ProjectionInput{
		Terms:       loan.Terms(),
		RateChanges: rateChanges,
		Prepayments: append(stored, request.Prepayments...),
		Rule:        request.Rule,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ProjectionResponse{
		LoanID:  loanID,
		Entries: schedule.Entries,
		Summary: engine.Summarize(schedule.Entries, loan.Principal),
	}, nil
}

// Compare runs the projection with and without prepayments and reports the
// interest and tenure the scenario saves.
func (s *LedgerService) Compare(ctx context.Context, loanID string, request *domain.ProjectionRequest) (*domain.ProjectionComparison, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	rateChanges, err := s.EventRepo.ListRateChanges(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	stored, err := s.EventRepo.ListPrepayments(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	baseline, err := engine.Project(engine.ProjectionInput{
		Terms:       loan.Terms(),
		RateChanges: rateChanges,
	})
	if err != nil {
		return nil, err
	}

	scenario, err := engine.Project(engine.ProjectionInput{
		Terms:       loan.Terms(),
		RateChanges: rateChanges,
		Prepayments: append(stored, request.Prepayments...),
		Rule:        request.Rule,
	})
	if err != nil {
		return nil, err
	}

	baseSummary := engine.Summarize(baseline.Entries, loan.Principal)
	scenSummary := engine.Summarize(scenario.Entries, loan.Principal)

	return &domain.ProjectionComparison{
		LoanID:        loanID,
		Baseline:      baseSummary,
		Scenario:      scenSummary,
		InterestSaved: baseSummary.TotalInterest.Sub(scenSummary.TotalInterest),
		PeriodsSaved:  baseSummary.Tenure - scenSummary.Tenure,
	}, nil
}

func (s *LedgerService) recomputeResponse(ctx context.Context, loanID string) (*domain.LedgerResponse, error) {
	entries, summary, err := s.RecomputeLedger(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return &domain.LedgerResponse{LoanID: loanID, Entries: entries, Summary: summary}, nil
}

func (s *LedgerService) getLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LedgerService) cacheSummary(ctx context.Context, loanID string, summary domain.SummaryMetrics) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return
	}

	ttl := 24 * time.Hour
	if s.config != nil {
		ttl = s.config.GetSummaryCacheTTL()
	}

	if err := s.redis.Set(ctx, summaryCacheKey(loanID), payload, ttl).Err(); err != nil {
		// Cache misses are served from the ledger table; not fatal.
		log.Printf("failed to cache summary for %s: %v", loanID, err)
	}
}

func summaryCacheKey(loanID string) string {
	return fmt.Sprintf("loan:summary:%s", loanID)
}
