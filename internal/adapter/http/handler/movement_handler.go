package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/adapter/http/dto"
	"github.com/finanza/ledger/internal/domain"
)

// MovementService is the movement surface the handler needs.
type MovementService interface {
	ExecuteTransfer(ctx context.Context, actorUserID, fromAccountID, toAccountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error)
	ExecuteDeposit(ctx context.Context, actorUserID, accountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error)
	ExecuteAdminFund(ctx context.Context, actorUserID, toAccountID string, amount decimal.Decimal) (*domain.OperationResult, error)
	GetOperation(ctx context.Context, id string) (*domain.Operation, error)
	ListOperationsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
}

// MovementHandler handles money movement HTTP requests. All three
// movement kinds flow through the same gate and come back with an
// approved, held or rejected outcome rather than an error.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// CreateTransfer moves money between two accounts.
func (h *MovementHandler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.movementUC.ExecuteTransfer(r.Context(), req.ActorUserID, req.FromAccountID, req.ToAccountID, req.Amount, req.SourceTag)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to execute transfer", err.Error())

		return
	}

	writeJSON(w, movementStatus(result), dto.MovementFromResult(result))
}

// CreateDeposit credits a single account from an external source.
func (h *MovementHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.movementUC.ExecuteDeposit(r.Context(), req.ActorUserID, req.AccountID, req.Amount, req.SourceTag)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to execute deposit", err.Error())

		return
	}

	writeJSON(w, movementStatus(result), dto.MovementFromResult(result))
}

// CreateAdminFund pays money out of the system reserve into an account.
func (h *MovementHandler) CreateAdminFund(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminFundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.movementUC.ExecuteAdminFund(r.Context(), req.ActorUserID, req.ToAccountID, req.Amount)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to execute admin funding", err.Error())

		return
	}

	writeJSON(w, movementStatus(result), dto.MovementFromResult(result))
}

// GetOperation retrieves an operation group by ID.
func (h *MovementHandler) GetOperation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	op, err := h.movementUC.GetOperation(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get operation", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// ListByAccount lists operations touching an account.
func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	operations, err := h.movementUC.ListOperationsByAccount(r.Context(), accountID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list operations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationsFromDomain(operations))
}

// movementStatus picks the HTTP status for a gate outcome. A rejection
// is still a well-formed answer, not a server failure.
func movementStatus(result *domain.OperationResult) int {
	switch result.Outcome {
	case domain.OutcomeApproved:
		return http.StatusCreated
	case domain.OutcomeHeld:
		return http.StatusAccepted
	default:
		return http.StatusUnprocessableEntity
	}
}
