package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationStatus is the lifecycle state of an operation group.
type OperationStatus string

const (
	// OperationStatusHeld means the operation's entries exist but are
	// still pending, awaiting re-evaluation (e.g. KYC approval).
	OperationStatusHeld OperationStatus = "held"
	// OperationStatusPosted means all entries in the group are posted.
	OperationStatusPosted OperationStatus = "posted"
	// OperationStatusVoided means a held operation failed
	// re-evaluation and its pending entries were voided.
	OperationStatusVoided OperationStatus = "voided"
	// OperationStatusReversed means a posted operation was undone by
	// a reversal operation.
	OperationStatusReversed OperationStatus = "reversed"
)

// Operation groups the sibling entries of one movement. The two sides
// of a transfer share one operation; the sweeper re-evaluates held
// operations as a unit.
type Operation struct {
	ID            string
	Type          MovementType
	ActorUserID   string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Status        OperationStatus
	Reason        ReasonCode
	SourceTag     string
	ReversalOf    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Movement reconstructs the proposed movement this operation was
// created from, for re-evaluation of held operations.
func (o *Operation) Movement() Movement {
	return Movement{
		ActorUserID:   o.ActorUserID,
		FromAccountID: o.FromAccountID,
		ToAccountID:   o.ToAccountID,
		Amount:        o.Amount,
		Type:          o.Type,
		SourceTag:     o.SourceTag,
	}
}

// IsHeld reports whether the operation is awaiting re-evaluation.
func (o *Operation) IsHeld() bool {
	return o.Status == OperationStatusHeld
}
