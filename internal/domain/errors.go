package domain

import "errors"

var (
	// Ledger store errors
	ErrInvalidEntry  = errors.New("invalid entry draft")
	ErrEntryNotFound = errors.New("entry not found")
	// ErrPartialCommit means an atomic promote group could not be
	// committed as a whole. It must never be treated as retryable
	// without investigation.
	ErrPartialCommit    = errors.New("partial commit: promote group is not atomic")
	ErrNotReversible    = errors.New("entry is not in posted state")
	ErrLedgerUnbalanced = errors.New("ledger is unbalanced: debits do not equal credits")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountFrozen   = errors.New("account is frozen")
	// ErrSystemReserveMissing is an operator-facing configuration
	// failure, surfaced distinctly from validation rejections.
	ErrSystemReserveMissing = errors.New("system reserve account missing or inactive")

	// Movement errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrSameAccount         = errors.New("cannot move money to the same account")
	ErrMissingAccountRef   = errors.New("movement is missing an account reference")
	ErrUnknownMovementType = errors.New("unknown movement type")
	ErrCurrencyMismatch    = errors.New("cannot move money between different currencies")
	ErrOperationNotFound   = errors.New("operation not found")
	ErrOperationNotHeld    = errors.New("operation is not held")

	// User errors
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidKYCStatus = errors.New("invalid kyc status")
)
