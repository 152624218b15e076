package dto

import (
	"github.com/shopspring/decimal"
)

// CreateUserRequest represents a request to register a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateKYCRequest represents a KYC status decision for a user.
type UpdateKYCRequest struct {
	Status string `json:"status"`
}

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	OwnerUserID string `json:"owner_user_id"`
	Currency    string `json:"currency"`
}

// CreateTransferRequest represents a request to move money between accounts.
type CreateTransferRequest struct {
	ActorUserID   string          `json:"actor_user_id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	SourceTag     string          `json:"source_tag,omitempty"`
}

// CreateDepositRequest represents a request to credit a single account
// from an external source.
type CreateDepositRequest struct {
	ActorUserID string          `json:"actor_user_id"`
	AccountID   string          `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"`
	SourceTag   string          `json:"source_tag,omitempty"`
}

// AdminFundRequest represents an administrative funding request paid
// out of the system reserve.
type AdminFundRequest struct {
	ActorUserID string          `json:"actor_user_id"`
	ToAccountID string          `json:"to_account_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// ReverseEntryRequest represents a request to reverse a posted entry's
// operation group.
type ReverseEntryRequest struct {
	Reason string `json:"reason"`
}
