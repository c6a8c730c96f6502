package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrLoanNotFound         = errors.New("loan not found")
	ErrLoanAlreadyExists    = errors.New("loan already exists")
	ErrInvalidPrincipal     = errors.New("principal must be greater than zero")
	ErrInvalidTenure        = errors.New("tenure must be greater than zero")
	ErrInvalidInstallment   = errors.New("installment must be greater than zero")
	ErrNoRateInEffect       = errors.New("no interest rate in effect for period")
	ErrDuplicateRateChange  = errors.New("duplicate rate change effective date")
	ErrInvalidEventAmount   = errors.New("event amount must be greater than zero")
	ErrInvalidRecurringRule = errors.New("invalid recurring prepayment rule")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodeLoanAlreadyExists   = "LOAN_ALREADY_EXISTS"
	ErrCodeInvalidLoanTerms    = "INVALID_LOAN_TERMS"
	ErrCodeNoRateInEffect      = "NO_RATE_IN_EFFECT"
	ErrCodeDuplicateRateChange = "DUPLICATE_RATE_CHANGE"
	ErrCodeInvalidEventAmount  = "INVALID_EVENT_AMOUNT"
	ErrCodeInvalidRecurring    = "INVALID_RECURRING_RULE"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapLoanAlreadyExists(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyExists,
		fmt.Sprintf("Loan with ID %s already exists", loanID),
		ErrLoanAlreadyExists,
	)
}

func WrapInvalidLoanTerms(reason string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanTerms,
		fmt.Sprintf("Cannot calculate schedule: %s", reason),
		err,
	)
}

func WrapNoRateInEffect(month string) *BusinessError {
	return NewBusinessError(
		ErrCodeNoRateInEffect,
		fmt.Sprintf("No interest rate in effect for %s", month),
		ErrNoRateInEffect,
	)
}

func WrapDuplicateRateChange(effectiveDate string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateRateChange,
		fmt.Sprintf("Two rate changes share effective date %s", effectiveDate),
		ErrDuplicateRateChange,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
