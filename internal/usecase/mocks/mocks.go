package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

// MockAccountRepository is a mock implementation of AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	CreateFunc            func(ctx context.Context, account *domain.Account) error
	CreateTxFunc          func(ctx context.Context, tx usecase.Transaction, account *domain.Account) error
	GetByIDFunc           func(ctx context.Context, id string) (*domain.Account, error)
	GetByIDsForUpdateFunc func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error)
	GetSystemReserveFunc  func(ctx context.Context) (*domain.Account, error)
	ListByOwnerFunc       func(ctx context.Context, ownerUserID string) ([]*domain.Account, error)
	ListFunc              func(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	UpdateStatusFunc      func(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

// Put seeds an account directly into the in-memory store.
func (m *MockAccountRepository) Put(account *domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) CreateTx(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, account)
	}
	return m.Create(ctx, account)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockAccountRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, id := range ids {
		if acc, ok := m.accounts[id]; ok {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) GetSystemReserve(ctx context.Context) (*domain.Account, error) {
	if m.GetSystemReserveFunc != nil {
		return m.GetSystemReserveFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, acc := range m.accounts {
		if acc.Type == domain.AccountTypeSystemReserve {
			return acc, nil
		}
	}
	return nil, domain.ErrSystemReserveMissing
}

func (m *MockAccountRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]*domain.Account, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerUserID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.Account
	for _, acc := range m.accounts {
		if acc.OwnerUserID == ownerUserID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

func (m *MockAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var accounts []*domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(accounts) >= limit {
			break
		}
		accounts = append(accounts, m.accounts[id])
	}
	return accounts, nil
}

func (m *MockAccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Status = status
	acc.UpdatedAt = updatedAt
	return nil
}

// MockEntryRepository is a mock implementation of EntryRepository.
type MockEntryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	AppendFunc               func(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error
	GetByIDFunc              func(ctx context.Context, id string) (*domain.Entry, error)
	GetByIDsForUpdateFunc    func(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error)
	PromoteFunc              func(ctx context.Context, tx usecase.Transaction, ids []string, postedAt time.Time) (int64, error)
	MarkReversedFunc         func(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error
	VoidByOperationFunc      func(ctx context.Context, tx usecase.Transaction, operationID string, at time.Time) (int64, error)
	ListByAccountFunc        func(ctx context.Context, accountID string, statuses []domain.EntryStatus, limit, offset int) ([]*domain.Entry, error)
	ListByOperationFunc      func(ctx context.Context, operationID string) ([]*domain.Entry, error)
	SumPostedByAccountFunc   func(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error)
	SumPostedByUserFunc      func(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error)
	SumPendingByUserFunc     func(ctx context.Context, userID string) (decimal.Decimal, error)
	SumAllPostedFunc         func(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
	UnbalancedOperationsFunc func(ctx context.Context, limit int) ([]string, error)
}

func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{
		entries: make(map[string]*domain.Entry),
	}
}

// Put seeds an entry directly into the in-memory store.
func (m *MockEntryRepository) Put(entry *domain.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
}

func (m *MockEntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (m *MockEntryRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error) {
	if m.GetByIDsForUpdateFunc != nil {
		return m.GetByIDsForUpdateFunc(ctx, tx, ids)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, id := range ids {
		if e, ok := m.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (m *MockEntryRepository) Promote(ctx context.Context, tx usecase.Transaction, ids []string, postedAt time.Time) (int64, error) {
	if m.PromoteFunc != nil {
		return m.PromoteFunc(ctx, tx, ids, postedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, id := range ids {
		e, ok := m.entries[id]
		if !ok || e.Status != domain.EntryStatusPending {
			continue
		}
		at := postedAt
		e.Status = domain.EntryStatusPosted
		e.PostedAt = &at
		affected++
	}
	return affected, nil
}

func (m *MockEntryRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	if m.MarkReversedFunc != nil {
		return m.MarkReversedFunc(ctx, tx, id, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return domain.ErrEntryNotFound
	}
	e.Status = domain.EntryStatusReversed
	return nil
}

func (m *MockEntryRepository) VoidByOperation(ctx context.Context, tx usecase.Transaction, operationID string, at time.Time) (int64, error) {
	if m.VoidByOperationFunc != nil {
		return m.VoidByOperationFunc(ctx, tx, operationID, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var affected int64
	for _, e := range m.entries {
		if e.OperationID == operationID && e.Status == domain.EntryStatusPending {
			e.Status = domain.EntryStatusVoided
			affected++
		}
	}
	return affected, nil
}

func (m *MockEntryRepository) ListByAccount(ctx context.Context, accountID string, statuses []domain.EntryStatus, limit, offset int) ([]*domain.Entry, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, statuses, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[domain.EntryStatus]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.AccountID != accountID {
			continue
		}
		if len(wanted) > 0 && !wanted[e.Status] {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *MockEntryRepository) ListByOperation(ctx context.Context, operationID string) ([]*domain.Entry, error) {
	if m.ListByOperationFunc != nil {
		return m.ListByOperationFunc(ctx, operationID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []*domain.Entry
	for _, e := range m.entries {
		if e.OperationID == operationID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// counted reports whether an entry contributes to balances. Reversed
// entries stay counted; their reversal group nets them out.
func counted(status domain.EntryStatus) bool {
	return status == domain.EntryStatusPosted || status == domain.EntryStatusReversed
}

func (m *MockEntryRepository) SumPostedByAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumPostedByAccountFunc != nil {
		return m.SumPostedByAccountFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	credits, debits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.AccountID != accountID || !counted(e.Status) {
			continue
		}
		if e.Direction == domain.DirectionCredit {
			credits = credits.Add(e.Amount)
		} else {
			debits = debits.Add(e.Amount)
		}
	}
	return credits, debits, nil
}

func (m *MockEntryRepository) SumPostedByUser(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumPostedByUserFunc != nil {
		return m.SumPostedByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	credits, debits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if e.UserID != userID || !counted(e.Status) {
			continue
		}
		if e.Direction == domain.DirectionCredit {
			credits = credits.Add(e.Amount)
		} else {
			debits = debits.Add(e.Amount)
		}
	}
	return credits, debits, nil
}

func (m *MockEntryRepository) SumPendingByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if m.SumPendingByUserFunc != nil {
		return m.SumPendingByUserFunc(ctx, userID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, e := range m.entries {
		if e.UserID == userID && e.Status == domain.EntryStatusPending && e.Direction == domain.DirectionDebit {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (m *MockEntryRepository) SumAllPosted(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	if m.SumAllPostedFunc != nil {
		return m.SumAllPostedFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	credits, debits := decimal.Zero, decimal.Zero
	for _, e := range m.entries {
		if !counted(e.Status) {
			continue
		}
		if e.Direction == domain.DirectionCredit {
			credits = credits.Add(e.Amount)
		} else {
			debits = debits.Add(e.Amount)
		}
	}
	return credits, debits, nil
}

func (m *MockEntryRepository) UnbalancedOperations(ctx context.Context, limit int) ([]string, error) {
	if m.UnbalancedOperationsFunc != nil {
		return m.UnbalancedOperationsFunc(ctx, limit)
	}
	return nil, nil
}

// MockOperationRepository is a mock implementation of OperationRepository.
type MockOperationRepository struct {
	mu  sync.RWMutex
	ops map[string]*domain.Operation

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Operation, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Operation, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.OperationStatus, reason domain.ReasonCode, updatedAt time.Time) error
	ListHeldFunc         func(ctx context.Context, limit int) ([]*domain.Operation, error)
	ListHeldByUserFunc   func(ctx context.Context, userID string, limit int) ([]*domain.Operation, error)
	ListByAccountFunc    func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error)
}

func NewMockOperationRepository() *MockOperationRepository {
	return &MockOperationRepository{
		ops: make(map[string]*domain.Operation),
	}
}

// Put seeds an operation directly into the in-memory store.
func (m *MockOperationRepository) Put(op *domain.Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op.ID] = op
}

func (m *MockOperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, op)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops[op.ID] = op
	return nil
}

func (m *MockOperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if op, ok := m.ops[id]; ok {
		return op, nil
	}
	return nil, domain.ErrOperationNotFound
}

func (m *MockOperationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Operation, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockOperationRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OperationStatus, reason domain.ReasonCode, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, reason, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	op, ok := m.ops[id]
	if !ok {
		return domain.ErrOperationNotFound
	}
	op.Status = status
	op.Reason = reason
	op.UpdatedAt = updatedAt
	return nil
}

func (m *MockOperationRepository) ListHeld(ctx context.Context, limit int) ([]*domain.Operation, error) {
	if m.ListHeldFunc != nil {
		return m.ListHeldFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var held []*domain.Operation
	for _, op := range m.ops {
		if op.IsHeld() {
			held = append(held, op)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })
	if len(held) > limit {
		held = held[:limit]
	}
	return held, nil
}

func (m *MockOperationRepository) ListHeldByUser(ctx context.Context, userID string, limit int) ([]*domain.Operation, error) {
	if m.ListHeldByUserFunc != nil {
		return m.ListHeldByUserFunc(ctx, userID, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var held []*domain.Operation
	for _, op := range m.ops {
		if op.IsHeld() && op.ActorUserID == userID {
			held = append(held, op)
		}
	}
	sort.Slice(held, func(i, j int) bool { return held[i].ID < held[j].ID })
	if len(held) > limit {
		held = held[:limit]
	}
	return held, nil
}

func (m *MockOperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	if m.ListByAccountFunc != nil {
		return m.ListByAccountFunc(ctx, accountID, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ops []*domain.Operation
	for _, op := range m.ops {
		if op.FromAccountID == accountID || op.ToAccountID == accountID {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops, nil
}

// MockBalanceRepository is a mock implementation of BalanceRepository.
type MockBalanceRepository struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal

	GetFunc          func(ctx context.Context, accountID string) (decimal.Decimal, error)
	GetForUpdateFunc func(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error)
	ApplyFunc        func(ctx context.Context, tx usecase.Transaction, accountID string, delta decimal.Decimal, at time.Time) error
	SetFunc          func(ctx context.Context, accountID string, balance decimal.Decimal, at time.Time) error
	SumByOwnerFunc   func(ctx context.Context, ownerUserID string) (decimal.Decimal, error)
}

func NewMockBalanceRepository() *MockBalanceRepository {
	return &MockBalanceRepository{
		balances: make(map[string]decimal.Decimal),
	}
}

// Put seeds a running balance directly.
func (m *MockBalanceRepository) Put(accountID string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
}

// Balance reads the current stored balance, for assertions.
func (m *MockBalanceRepository) Balance(accountID string) decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[accountID]
}

func (m *MockBalanceRepository) Get(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[accountID], nil
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	if m.GetForUpdateFunc != nil {
		return m.GetForUpdateFunc(ctx, tx, accountID)
	}
	return m.Get(ctx, accountID)
}

func (m *MockBalanceRepository) Apply(ctx context.Context, tx usecase.Transaction, accountID string, delta decimal.Decimal, at time.Time) error {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, tx, accountID, delta, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = m.balances[accountID].Add(delta)
	return nil
}

func (m *MockBalanceRepository) Set(ctx context.Context, accountID string, balance decimal.Decimal, at time.Time) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, accountID, balance, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[accountID] = balance
	return nil
}

func (m *MockBalanceRepository) SumByOwner(ctx context.Context, ownerUserID string) (decimal.Decimal, error) {
	if m.SumByOwnerFunc != nil {
		return m.SumByOwnerFunc(ctx, ownerUserID)
	}
	return decimal.Zero, nil
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	CreateFunc       func(ctx context.Context, user *domain.User) error
	GetByIDFunc      func(ctx context.Context, id string) (*domain.User, error)
	KYCStatusFunc    func(ctx context.Context, userID string) (domain.KYCStatus, error)
	SetKYCStatusFunc func(ctx context.Context, userID string, status domain.KYCStatus, updatedAt time.Time) error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// Put seeds a user directly into the in-memory store.
func (m *MockUserRepository) Put(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error) {
	if m.KYCStatusFunc != nil {
		return m.KYCStatusFunc(ctx, userID)
	}
	u, err := m.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.KYCStatus, nil
}

func (m *MockUserRepository) SetKYCStatus(ctx context.Context, userID string, status domain.KYCStatus, updatedAt time.Time) error {
	if m.SetKYCStatusFunc != nil {
		return m.SetKYCStatusFunc(ctx, userID, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.KYCStatus = status
	u.UpdatedAt = updatedAt
	return nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

// Events returns all recorded events, for assertions.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if !e.Published {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.Published || e.PublishedAt == nil || !e.PublishedAt.Before(before) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc func(ctx context.Context, log *domain.AuditLog) error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Logs returns all recorded audit logs, for assertions.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return m.Logs(), nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	return nil
}

// MockRetrier is a mock implementation of Retrier that runs the
// operation once with no retry.
type MockRetrier struct {
	RetryFunc func(ctx context.Context, operation func() error) error
}

func NewMockRetrier() *MockRetrier {
	return &MockRetrier{}
}

func (m *MockRetrier) Retry(ctx context.Context, operation func() error) error {
	if m.RetryFunc != nil {
		return m.RetryFunc(ctx, operation)
	}
	return operation()
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
	counter      int
	mu           sync.Mutex
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	return fmt.Sprintf("mock-id-%03d", m.counter)
}

// ErrCacheMiss is returned by MockCache for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu   sync.RWMutex
	data map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{
		data: make(map[string][]byte),
	}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.data[key]; ok {
		return true, existing, nil
	}
	if response != nil {
		m.data[key] = response
	} else {
		m.data[key] = []byte("processing")
	}
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = response
	return nil
}
