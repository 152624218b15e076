package domain

import "github.com/shopspring/decimal"

// MovementType identifies the shape of a proposed money movement.
type MovementType string

const (
	// MovementTypeDeposit credits a single account.
	MovementTypeDeposit MovementType = "deposit"
	// MovementTypeTransfer pairs a debit on the source with a credit on the destination.
	MovementTypeTransfer MovementType = "transfer"
	// MovementTypeAdminFund debits the system reserve and credits a user account.
	MovementTypeAdminFund MovementType = "admin_fund"
)

// Movement is a proposed money movement as received from the
// surrounding request-handling code.
type Movement struct {
	ActorUserID   string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Type          MovementType
	SourceTag     string
}

// Validate checks the structural shape of the movement before any
// state is inspected.
func (m *Movement) Validate() error {
	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch m.Type {
	case MovementTypeDeposit:
		if m.ToAccountID == "" {
			return ErrMissingAccountRef
		}
	case MovementTypeTransfer:
		if m.FromAccountID == "" || m.ToAccountID == "" {
			return ErrMissingAccountRef
		}

		if m.FromAccountID == m.ToAccountID {
			return ErrSameAccount
		}
	case MovementTypeAdminFund:
		if m.ToAccountID == "" {
			return ErrMissingAccountRef
		}
	default:
		return ErrUnknownMovementType
	}

	return nil
}

// HasDebitSide reports whether the movement debits a source account,
// which makes the sufficient-funds check applicable.
func (m *Movement) HasDebitSide() bool {
	return m.Type == MovementTypeTransfer || m.Type == MovementTypeAdminFund
}

// Outcome is the terminal result of gate evaluation.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeHeld     Outcome = "held"
	OutcomeRejected Outcome = "rejected"
)

// ReasonCode explains a held or rejected outcome. These are expected,
// user-facing results, not errors.
type ReasonCode string

const (
	ReasonNone              ReasonCode = ""
	ReasonNoAccount         ReasonCode = "no_account"
	ReasonKYCPending        ReasonCode = "kyc_pending"
	ReasonKYCRejected       ReasonCode = "kyc_rejected"
	ReasonInsufficientFunds ReasonCode = "insufficient_funds"
)

// Decision is the gate's verdict on a proposed movement.
type Decision struct {
	Outcome Outcome
	Reason  ReasonCode
}

// Approved is the all-clear decision.
func Approved() Decision {
	return Decision{Outcome: OutcomeApproved}
}

// Held records that the movement should be parked as pending.
func Held(reason ReasonCode) Decision {
	return Decision{Outcome: OutcomeHeld, Reason: reason}
}

// Rejected records that the movement must not create entries.
func Rejected(reason ReasonCode) Decision {
	return Decision{Outcome: OutcomeRejected, Reason: reason}
}

// OperationResult is what callers receive after executing a movement.
// A rejected result means no entries were ever created; persistence
// failures surface as errors instead, so callers can retry those.
type OperationResult struct {
	OperationID string
	Outcome     Outcome
	Reason      ReasonCode
	EntryIDs    []string
}
