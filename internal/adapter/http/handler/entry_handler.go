package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finanza/ledger/internal/adapter/http/dto"
	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

// LedgerService is the entry surface the handler needs.
type LedgerService interface {
	EntriesFor(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error)
	EntriesForOperation(ctx context.Context, operationID string) ([]*domain.Entry, error)
	Reverse(ctx context.Context, entryID, reason string) (*domain.Operation, error)
}

// EntryHandler handles ledger entry HTTP requests.
type EntryHandler struct {
	ledgerUC LedgerService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerUC LedgerService) *EntryHandler {
	return &EntryHandler{ledgerUC: ledgerUC}
}

// ListByAccount lists entries for an account. An optional repeated
// "status" query parameter restricts the statuses returned.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var statuses []domain.EntryStatus
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, domain.EntryStatus(s))
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.ledgerUC.EntriesFor(r.Context(), usecase.ListEntriesInput{
		AccountID: accountID,
		Statuses:  statuses,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListByOperation lists the sibling entries of one operation group.
func (h *EntryHandler) ListByOperation(w http.ResponseWriter, r *http.Request) {
	operationID := chi.URLParam(r, "id")
	if operationID == "" {
		writeError(w, http.StatusBadRequest, "missing operation ID", "")
		return
	}

	entries, err := h.ledgerUC.EntriesForOperation(r.Context(), operationID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Reverse undoes a posted entry's operation group with a new
// opposite-direction operation.
func (h *EntryHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.ReverseEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	reversalOp, err := h.ledgerUC.Reverse(r.Context(), entryID, req.Reason)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reverse entry", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.OperationFromDomain(reversalOp))
}
