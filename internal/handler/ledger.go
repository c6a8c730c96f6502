package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/hpratama/loan-ledger-engine/internal/domain"
	"github.com/hpratama/loan-ledger-engine/internal/service"
	customError "github.com/hpratama/loan-ledger-engine/pkg/errors"
	"github.com/hpratama/loan-ledger-engine/pkg/response"
)

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /loans
func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, result)
}

// GetLedger handles GET /loans/{loanId}/ledger
func (h *LedgerHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	result, err := h.service.GetLedger(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// GetSummary handles GET /loans/{loanId}/summary
func (h *LedgerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	result, err := h.service.GetSummary(r.Context(), loanID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// AddRateChange handles POST /loans/{loanId}/rate-changes
func (h *LedgerHandler) AddRateChange(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.AddRateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.AddRateChange(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, result)
}

// AddPrepayment handles POST /loans/{loanId}/prepayments
func (h *LedgerHandler) AddPrepayment(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.AddPrepaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.AddPrepayment(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, result)
}

// AddPayment handles POST /loans/{loanId}/payments
func (h *LedgerHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.AddPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return
	}

	result, err := h.service.AddPayment(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, result)
}

// DeleteRateChange handles DELETE /loans/{loanId}/rate-changes/{id}
func (h *LedgerHandler) DeleteRateChange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.service.DeleteRateChange(r.Context(), vars["loanId"], vars["id"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// DeletePrepayment handles DELETE /loans/{loanId}/prepayments/{id}
func (h *LedgerHandler) DeletePrepayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.service.DeletePrepayment(r.Context(), vars["loanId"], vars["id"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// DeletePayment handles DELETE /loans/{loanId}/payments/{id}
func (h *LedgerHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	result, err := h.service.DeletePayment(r.Context(), vars["loanId"], vars["id"])
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// Project handles POST /loans/{loanId}/projection
func (h *LedgerHandler) Project(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	if request.Rule != nil {
		if err := h.validator.Struct(request.Rule); err != nil {
			response.BadRequest(w, "Validation failed", err)
			return
		}
	}

	result, err := h.service.Project(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// Compare handles POST /loans/{loanId}/comparison
func (h *LedgerHandler) Compare(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	var request domain.ProjectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	result, err := h.service.Compare(r.Context(), loanID, &request)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// writeBusinessError maps business error codes onto HTTP statuses.
func writeBusinessError(w http.ResponseWriter, err error) {
	var businessErr *customError.BusinessError
	if !errors.As(err, &businessErr) {
		response.InternalServerError(w, "Unexpected error", err)
		return
	}

	switch businessErr.Code {
	case customError.ErrCodeLoanNotFound:
		response.NotFound(w, businessErr.Message)
	case customError.ErrCodeLoanAlreadyExists:
		response.Error(w, http.StatusConflict, businessErr.Message, businessErr)
	case customError.ErrCodeDatabaseError, customError.ErrCodeCacheError:
		response.InternalServerError(w, businessErr.Message, businessErr)
	default:
		response.BadRequest(w, businessErr.Message, businessErr)
	}
}
