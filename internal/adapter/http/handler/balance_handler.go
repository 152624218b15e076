package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/adapter/http/dto"
)

// BalanceService is the balance surface the handler needs.
type BalanceService interface {
	BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error)
	BalanceOfUser(ctx context.Context, userID string) (decimal.Decimal, error)
	HeldFundsOfUser(ctx context.Context, userID string) (decimal.Decimal, error)
	RecomputeOf(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// BalanceHandler handles balance HTTP requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// GetAccountBalance returns the balance of one account.
func (h *BalanceHandler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	balance, err := h.balanceUC.BalanceOf(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}

// GetUserBalance returns a user's aggregate balance across accounts,
// plus the funds currently tied up in held debits.
func (h *BalanceHandler) GetUserBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	balance, err := h.balanceUC.BalanceOfUser(r.Context(), userID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get user balance", err.Error())

		return
	}

	held, err := h.balanceUC.HeldFundsOfUser(r.Context(), userID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get held funds", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		UserID:    userID,
		Balance:   balance,
		HeldFunds: held,
	})
}

// RecomputeAccountBalance rebuilds an account balance from its entries,
// bypassing both the cache and the running balance row.
func (h *BalanceHandler) RecomputeAccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	balance, err := h.balanceUC.RecomputeOf(r.Context(), accountID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to recompute balance", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		AccountID: accountID,
		Balance:   balance,
	})
}
