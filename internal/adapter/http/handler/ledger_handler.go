package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finanza/ledger/internal/adapter/http/dto"
	"github.com/finanza/ledger/internal/usecase"
)

// SweepService re-evaluates held operations.
type SweepService interface {
	SweepHeld(ctx context.Context) (*usecase.SweepReport, error)
}

// ConsistencyService verifies the ledger against its entries.
type ConsistencyService interface {
	CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error)
	VerifyOperation(ctx context.Context, operationID string) (bool, error)
}

// LedgerHandler exposes the operator surface: held-operation sweeps
// and ledger consistency checks.
type LedgerHandler struct {
	sweeper          SweepService
	reconciliationUC ConsistencyService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(sweeper SweepService, reconciliationUC ConsistencyService) *LedgerHandler {
	return &LedgerHandler{
		sweeper:          sweeper,
		reconciliationUC: reconciliationUC,
	}
}

// Sweep re-evaluates every held operation.
func (h *LedgerHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sweeper.SweepHeld(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sweep failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SweepFromReport(report))
}

// CheckConsistency verifies running balances and operation groups
// against the posted entries.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.CheckConsistency(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "consistency check failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyFromReport(report))
}

// VerifyOperation checks that one operation group's entries balance.
func (h *LedgerHandler) VerifyOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "id")
	if operationID == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	balanced, err := h.reconciliationUC.VerifyOperation(r.Context(), operationID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to verify operation", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"operation_id": operationID,
		"balanced":     balanced,
	})
}
