package domain

import "time"

// AccountType tags what kind of account this is.
type AccountType string

const (
	AccountTypeUser AccountType = "user"
	// AccountTypeSystemReserve marks the single counterparty account
	// for administrative funding. It must be seeded explicitly; the
	// gate never creates it on demand.
	AccountTypeSystemReserve AccountType = "system_reserve"
	AccountTypeAdmin         AccountType = "admin"
)

// AccountStatus is the operational state of an account.
type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
)

// Account is an identity and status container. It never stores a
// balance as ground truth: balance is derived from posted entries.
type Account struct {
	ID          string
	OwnerUserID string
	Type        AccountType
	Status      AccountStatus
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive reports whether the account can take part in movements.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsSystemReserve reports whether this is the administrative funding counterparty.
func (a *Account) IsSystemReserve() bool {
	return a.Type == AccountTypeSystemReserve
}
