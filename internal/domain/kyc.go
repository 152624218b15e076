package domain

import "time"

// KYCStatus is the verification state of a user, consumed by the
// transaction gate as a precondition input. The status itself is
// owned by the KYC workflow outside this core.
type KYCStatus string

const (
	KYCStatusNotStarted KYCStatus = "not_started"
	KYCStatusPending    KYCStatus = "pending"
	KYCStatusApproved   KYCStatus = "approved"
	KYCStatusRejected   KYCStatus = "rejected"
)

// IsValid reports whether s is a known KYC status.
func (s KYCStatus) IsValid() bool {
	switch s {
	case KYCStatusNotStarted, KYCStatusPending, KYCStatusApproved, KYCStatusRejected:
		return true
	}

	return false
}

// User carries the identity attributes the ledger core reads.
type User struct {
	ID        string
	Name      string
	Email     string
	KYCStatus KYCStatus
	System    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
