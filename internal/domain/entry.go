package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction indicates whether an entry increases or decreases an account.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Opposite returns the reversing direction.
func (d Direction) Opposite() Direction {
	if d == DirectionCredit {
		return DirectionDebit
	}

	return DirectionCredit
}

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	// EntryStatusPending is the initial state; pending entries never affect balance.
	EntryStatusPending EntryStatus = "pending"
	// EntryStatusPosted means the entry is final and counted in balance.
	EntryStatusPosted EntryStatus = "posted"
	// EntryStatusReversed means a posted entry was undone by a new opposite entry.
	EntryStatusReversed EntryStatus = "reversed"
	// EntryStatusVoided means a pending entry was dropped before ever posting.
	EntryStatusVoided EntryStatus = "voided"
)

// Entry is one side of a money movement. Once posted, amount and
// direction are immutable; the only permitted transition is to
// reversed, paired with a new opposite-direction entry.
type Entry struct {
	ID          string
	AccountID   string
	UserID      string
	OperationID string
	Direction   Direction
	Amount      decimal.Decimal
	Status      EntryStatus
	SourceTag   string
	ReversalOf  *string
	CreatedAt   time.Time
	PostedAt    *time.Time
}

// Validate checks an entry draft before it is appended to the ledger.
func (e *Entry) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidEntry
	}

	if e.AccountID == "" {
		return ErrInvalidEntry
	}

	if e.Direction != DirectionCredit && e.Direction != DirectionDebit {
		return ErrInvalidEntry
	}

	if e.Status != EntryStatusPending {
		return ErrInvalidEntry
	}

	return nil
}

// SignedAmount returns the entry's effect on its account balance:
// positive for credits, negative for debits.
func (e *Entry) SignedAmount() decimal.Decimal {
	if e.Direction == DirectionDebit {
		return e.Amount.Neg()
	}

	return e.Amount
}

// CanPost reports whether the entry may transition to posted.
func (e *Entry) CanPost() bool {
	return e.Status == EntryStatusPending
}

// CanReverse reports whether the entry may transition to reversed.
func (e *Entry) CanReverse() bool {
	return e.Status == EntryStatusPosted
}
