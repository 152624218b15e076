package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finanza/ledger/internal/adapter/http/dto"
	"github.com/finanza/ledger/internal/domain"
)

// AccountService is the account surface the handler needs.
type AccountService interface {
	CreateAccount(ctx context.Context, ownerUserID, currency string) (*domain.Account, error)
	GetAccount(ctx context.Context, id string) (*domain.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerUserID string) ([]*domain.Account, error)
	FreezeAccount(ctx context.Context, id string) error
	UnfreezeAccount(ctx context.Context, id string) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.OwnerUserID, req.Currency)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create account", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListByOwner lists the accounts a user owns.
func (h *AccountHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_user_id")
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "missing owner_user_id parameter", "")
		return
	}

	accounts, err := h.accountUC.ListAccountsByOwner(r.Context(), ownerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Freeze disables an account for movements.
func (h *AccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.accountUC.FreezeAccount(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to freeze account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "frozen"})
}

// Unfreeze re-enables an account for movements.
func (h *AccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	if err := h.accountUC.UnfreezeAccount(r.Context(), id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to unfreeze account", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}
