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

// KYCService is the user and KYC surface the handler needs.
type KYCService interface {
	CreateUser(ctx context.Context, name, email string) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateKYCStatus(ctx context.Context, userID string, status domain.KYCStatus) (*usecase.SweepReport, error)
}

// KYCHandler handles user and KYC HTTP requests.
type KYCHandler struct {
	kycUC KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycUC KYCService) *KYCHandler {
	return &KYCHandler{kycUC: kycUC}
}

// CreateUser registers a new user with KYC not started.
func (h *KYCHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := h.kycUC.CreateUser(r.Context(), req.Name, req.Email)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create user", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.UserFromDomain(user))
}

// GetUser retrieves a user by ID.
func (h *KYCHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	user, err := h.kycUC.GetUser(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get user", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.UserFromDomain(user))
}

// UpdateKYC records a KYC decision for a user. A decided status also
// sweeps the user's held operations, and the sweep outcome is returned
// alongside the new status.
func (h *KYCHandler) UpdateKYC(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "missing user ID", "")
		return
	}

	var req dto.UpdateKYCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	report, err := h.kycUC.UpdateKYCStatus(r.Context(), userID, domain.KYCStatus(req.Status))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update kyc status", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"status":  req.Status,
		"sweep":   dto.SweepFromReport(report),
	})
}
