package domain

import "time"

// Event types
const (
	EventTypeMovementPosted = "movement.posted"
	EventTypeMovementHeld   = "movement.held"
	EventTypeMovementVoided = "movement.voided"
	EventTypeEntryReversed  = "entry.reversed"
	EventTypeKYCUpdated     = "kyc.updated"
	EventTypeAccountCreated = "account.created"
)

// Aggregate types
const (
	AggregateTypeOperation = "operation"
	AggregateTypeEntry     = "entry"
	AggregateTypeAccount   = "account"
	AggregateTypeUser      = "user"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// MovementPostedEvent payload
type MovementPostedEvent struct {
	OperationID   string `json:"operation_id"`
	MovementType  string `json:"movement_type"`
	FromAccountID string `json:"from_account_id,omitempty"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	SourceTag     string `json:"source_tag,omitempty"`
}

// MovementHeldEvent payload
type MovementHeldEvent struct {
	OperationID  string `json:"operation_id"`
	MovementType string `json:"movement_type"`
	Reason       string `json:"reason"`
	Amount       string `json:"amount"`
}

// EntryReversedEvent payload
type EntryReversedEvent struct {
	OriginalEntryID string `json:"original_entry_id"`
	ReversalEntryID string `json:"reversal_entry_id"`
	AccountID       string `json:"account_id"`
	Amount          string `json:"amount"`
	Reason          string `json:"reason,omitempty"`
}

// KYCUpdatedEvent payload
type KYCUpdatedEvent struct {
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// AccountCreatedEvent payload
type AccountCreatedEvent struct {
	AccountID   string `json:"account_id"`
	OwnerUserID string `json:"owner_user_id"`
	AccountType string `json:"account_type"`
	Currency    string `json:"currency"`
}
