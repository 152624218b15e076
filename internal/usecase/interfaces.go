package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	CreateTx(ctx context.Context, tx Transaction, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error)
	GetSystemReserve(ctx context.Context) (*domain.Account, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
}

// EntryRepository defines data access for ledger entries. The table
// is append-only: the only updates are the status transitions
// pending->posted, pending->voided and posted->reversed.
type EntryRepository interface {
	Append(ctx context.Context, tx Transaction, entry *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDsForUpdate(ctx context.Context, tx Transaction, ids []string) ([]*domain.Entry, error)
	Promote(ctx context.Context, tx Transaction, ids []string, postedAt time.Time) (int64, error)
	MarkReversed(ctx context.Context, tx Transaction, id string, at time.Time) error
	VoidByOperation(ctx context.Context, tx Transaction, operationID string, at time.Time) (int64, error)
	ListByAccount(ctx context.Context, accountID string, statuses []domain.EntryStatus, limit, offset int) ([]*domain.Entry, error)
	ListByOperation(ctx context.Context, operationID string) ([]*domain.Entry, error)
	SumPostedByAccount(ctx context.Context, accountID string) (credits, debits decimal.Decimal, err error)
	SumPostedByUser(ctx context.Context, userID string) (credits, debits decimal.Decimal, err error)
	SumPendingByUser(ctx context.Context, userID string) (decimal.Decimal, error)
	SumAllPosted(ctx context.Context) (credits, debits decimal.Decimal, err error)
	UnbalancedOperations(ctx context.Context, limit int) ([]string, error)
}

// OperationRepository defines data access for operation groups.
type OperationRepository interface {
	Create(ctx context.Context, tx Transaction, op *domain.Operation) error
	GetByID(ctx context.Context, id string) (*domain.Operation, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Operation, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.OperationStatus, reason domain.ReasonCode, updatedAt time.Time) error
	ListHeld(ctx context.Context, limit int) ([]*domain.Operation, error)
	ListHeldByUser(ctx context.Context, userID string, limit int) ([]*domain.Operation, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
}

// BalanceRepository maintains the incremental running totals derived
// from posted entries. It is a single-writer cache: only promote and
// reverse paths may call Apply.
type BalanceRepository interface {
	Get(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetForUpdate(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error)
	Apply(ctx context.Context, tx Transaction, accountID string, delta decimal.Decimal, at time.Time) error
	Set(ctx context.Context, accountID string, balance decimal.Decimal, at time.Time) error
	SumByOwner(ctx context.Context, ownerUserID string) (decimal.Decimal, error)
}

// UserRepository defines data access for users and their KYC status.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error)
	SetKYCStatus(ctx context.Context, userID string, status domain.KYCStatus, updatedAt time.Time) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier retries an operation on transient storage conflicts
// (serialization failures, deadlocks).
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
