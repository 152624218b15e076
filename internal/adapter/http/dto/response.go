package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	KYCStatus string    `json:"kyc_status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFromDomain converts a domain user to a response.
func UserFromDomain(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		KYCStatus: string(u.KYCStatus),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.ID,
		OwnerUserID: a.OwnerUserID,
		Type:        string(a.Type),
		Status:      string(a.Status),
		Currency:    a.Currency,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// MovementResponse represents the result of executing a movement.
// Rejected movements come back with an empty operation_id because
// nothing was persisted.
type MovementResponse struct {
	OperationID string   `json:"operation_id,omitempty"`
	Outcome     string   `json:"outcome"`
	Reason      string   `json:"reason,omitempty"`
	EntryIDs    []string `json:"entry_ids,omitempty"`
}

// MovementFromResult converts an operation result to a response.
func MovementFromResult(r *domain.OperationResult) *MovementResponse {
	return &MovementResponse{
		OperationID: r.OperationID,
		Outcome:     string(r.Outcome),
		Reason:      string(r.Reason),
		EntryIDs:    r.EntryIDs,
	}
}

// OperationResponse represents an operation group in API responses.
type OperationResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	ActorUserID   string          `json:"actor_user_id"`
	FromAccountID string          `json:"from_account_id,omitempty"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Reason        string          `json:"reason,omitempty"`
	SourceTag     string          `json:"source_tag,omitempty"`
	ReversalOf    *string         `json:"reversal_of,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OperationFromDomain converts a domain operation to a response.
func OperationFromDomain(o *domain.Operation) *OperationResponse {
	return &OperationResponse{
		ID:            o.ID,
		Type:          string(o.Type),
		ActorUserID:   o.ActorUserID,
		FromAccountID: o.FromAccountID,
		ToAccountID:   o.ToAccountID,
		Amount:        o.Amount,
		Status:        string(o.Status),
		Reason:        string(o.Reason),
		SourceTag:     o.SourceTag,
		ReversalOf:    o.ReversalOf,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// OperationsFromDomain converts domain operations to responses.
func OperationsFromDomain(operations []*domain.Operation) []*OperationResponse {
	result := make([]*OperationResponse, len(operations))
	for i, o := range operations {
		result[i] = OperationFromDomain(o)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	UserID      string          `json:"user_id"`
	OperationID string          `json:"operation_id"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	SourceTag   string          `json:"source_tag,omitempty"`
	ReversalOf  *string         `json:"reversal_of,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	PostedAt    *time.Time      `json:"posted_at,omitempty"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		UserID:      e.UserID,
		OperationID: e.OperationID,
		Direction:   string(e.Direction),
		Amount:      e.Amount,
		Status:      string(e.Status),
		SourceTag:   e.SourceTag,
		ReversalOf:  e.ReversalOf,
		CreatedAt:   e.CreatedAt,
		PostedAt:    e.PostedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// BalanceResponse represents an account or user balance.
type BalanceResponse struct {
	AccountID string          `json:"account_id,omitempty"`
	UserID    string          `json:"user_id,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
	HeldFunds decimal.Decimal `json:"held_funds,omitempty"`
}

// SweepResponse represents the outcome of a held-operation sweep.
type SweepResponse struct {
	Evaluated int       `json:"evaluated"`
	Promoted  int       `json:"promoted"`
	Voided    int       `json:"voided"`
	StillHeld int       `json:"still_held"`
	SweptAt   time.Time `json:"swept_at"`
}

// SweepFromReport converts a sweep report to a response.
func SweepFromReport(r *usecase.SweepReport) *SweepResponse {
	return &SweepResponse{
		Evaluated: r.Evaluated,
		Promoted:  r.Promoted,
		Voided:    r.Voided,
		StillHeld: r.StillHeld,
		SweptAt:   r.SweptAt,
	}
}

// DriftResponse represents one account whose running balance diverged
// from its posted entries.
type DriftResponse struct {
	AccountID string          `json:"account_id"`
	Running   decimal.Decimal `json:"running"`
	Computed  decimal.Decimal `json:"computed"`
	Delta     decimal.Decimal `json:"delta"`
}

// ConsistencyResponse represents a full ledger consistency check.
type ConsistencyResponse struct {
	Consistent           bool            `json:"consistent"`
	CheckedAccounts      int             `json:"checked_accounts"`
	Drifts               []DriftResponse `json:"drifts,omitempty"`
	UnbalancedOperations []string        `json:"unbalanced_operations,omitempty"`
	PostedCredits        decimal.Decimal `json:"posted_credits"`
	PostedDebits         decimal.Decimal `json:"posted_debits"`
	CheckedAt            time.Time       `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to a response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	drifts := make([]DriftResponse, len(r.Drifts))
	for i, d := range r.Drifts {
		drifts[i] = DriftResponse{
			AccountID: d.AccountID,
			Running:   d.Running,
			Computed:  d.Computed,
			Delta:     d.Delta,
		}
	}
	return &ConsistencyResponse{
		Consistent:           r.Consistent(),
		CheckedAccounts:      r.CheckedAccounts,
		Drifts:               drifts,
		UnbalancedOperations: r.UnbalancedOperations,
		PostedCredits:        r.PostedCredits,
		PostedDebits:         r.PostedDebits,
		CheckedAt:            r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
