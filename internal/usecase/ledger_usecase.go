package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/infrastructure/metrics"
)

// LedgerUseCase is the append-only ledger store surface: append a
// pending draft, promote a group atomically, reverse a posted group,
// read entries. Destructive updates of posted entries do not exist.
type LedgerUseCase struct {
	txManager     TransactionManager
	accountRepo   AccountRepository
	entryRepo     EntryRepository
	operationRepo OperationRepository
	balanceRepo   BalanceRepository
	outboxRepo    OutboxRepository
	cache         Cache
	idGen         IDGenerator
	metrics       *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	operationRepo OperationRepository,
	balanceRepo BalanceRepository,
	outboxRepo OutboxRepository,
	cache Cache,
	idGen IDGenerator,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:     txManager,
		accountRepo:   accountRepo,
		entryRepo:     entryRepo,
		operationRepo: operationRepo,
		balanceRepo:   balanceRepo,
		outboxRepo:    outboxRepo,
		cache:         cache,
		idGen:         idGen,
		metrics:       m,
	}
}

// AppendInput is a pending entry draft.
type AppendInput struct {
	AccountID   string
	UserID      string
	OperationID string
	Direction   domain.Direction
	Amount      decimal.Decimal
	SourceTag   string
}

// Append records a pending entry. The draft must reference a known
// account and carry a positive amount.
func (uc *LedgerUseCase) Append(ctx context.Context, input AppendInput) (string, error) {
	entry := &domain.Entry{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		UserID:      input.UserID,
		OperationID: input.OperationID,
		Direction:   input.Direction,
		Amount:      input.Amount,
		Status:      domain.EntryStatusPending,
		SourceTag:   input.SourceTag,
		CreatedAt:   time.Now().UTC(),
	}

	if err := entry.Validate(); err != nil {
		return "", err
	}

	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return "", fmt.Errorf("%w: account %s", domain.ErrInvalidEntry, input.AccountID)
		}

		return "", err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := uc.entryRepo.Append(ctx, tx, entry); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	return entry.ID, nil
}

// Promote transitions a set of pending entries to posted as one
// atomic group.
func (uc *LedgerUseCase) Promote(ctx context.Context, entryIDs []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	entries, err := uc.PromoteTx(ctx, tx, entryIDs, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	uc.invalidateBalances(ctx, entries)

	return nil
}

// PromoteTx posts a pending group inside an existing transaction and
// applies the running-balance deltas. Either every entry in the group
// transitions or none does.
func (uc *LedgerUseCase) PromoteTx(ctx context.Context, tx Transaction, entryIDs []string, postedAt time.Time) ([]*domain.Entry, error) {
	if len(entryIDs) == 0 {
		return nil, fmt.Errorf("%w: empty promote group", domain.ErrPartialCommit)
	}

	entries, err := uc.entryRepo.GetByIDsForUpdate(ctx, tx, entryIDs)
	if err != nil {
		return nil, err
	}

	if len(entries) != len(entryIDs) {
		return nil, fmt.Errorf("%w: %d of %d entries found", domain.ErrPartialCommit, len(entries), len(entryIDs))
	}

	for _, e := range entries {
		if !e.CanPost() {
			return nil, fmt.Errorf("%w: entry %s is %s", domain.ErrPartialCommit, e.ID, e.Status)
		}
	}

	affected, err := uc.entryRepo.Promote(ctx, tx, entryIDs, postedAt)
	if err != nil {
		return nil, err
	}

	if affected != int64(len(entryIDs)) {
		return nil, fmt.Errorf("%w: promoted %d of %d entries", domain.ErrPartialCommit, affected, len(entryIDs))
	}

	// The promote path is the single writer of running totals.
	for _, e := range entries {
		if err := uc.balanceRepo.Apply(ctx, tx, e.AccountID, e.SignedAmount(), postedAt); err != nil {
			return nil, err
		}
	}

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.Add(float64(len(entries)))
	}

	return entries, nil
}

// Reverse undoes a posted entry by creating and posting a new group
// of opposite entries covering the entry's whole operation, then
// marking the originals reversed. History is never deleted.
func (uc *LedgerUseCase) Reverse(ctx context.Context, entryID, reason string) (*domain.Operation, error) {
	original, err := uc.entryRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !original.CanReverse() {
		return nil, fmt.Errorf("%w: entry %s is %s", domain.ErrNotReversible, original.ID, original.Status)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	op, err := uc.operationRepo.GetByIDForUpdate(ctx, tx, original.OperationID)
	if err != nil {
		return nil, err
	}

	if op.Status != domain.OperationStatusPosted {
		return nil, fmt.Errorf("%w: operation %s is %s", domain.ErrNotReversible, op.ID, op.Status)
	}

	siblings, err := uc.entryRepo.ListByOperation(ctx, op.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversalOp := &domain.Operation{
		ID:            uc.idGen.Generate(),
		Type:          op.Type,
		ActorUserID:   op.ActorUserID,
		FromAccountID: op.ToAccountID,
		ToAccountID:   op.FromAccountID,
		Amount:        op.Amount,
		Status:        domain.OperationStatusPosted,
		SourceTag:     reason,
		ReversalOf:    &op.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.operationRepo.Create(ctx, tx, reversalOp); err != nil {
		return nil, err
	}

	reversalIDs := make([]string, 0, len(siblings))

	for _, sibling := range siblings {
		if sibling.Status != domain.EntryStatusPosted {
			continue
		}

		originalID := sibling.ID
		reversal := &domain.Entry{
			ID:          uc.idGen.Generate(),
			AccountID:   sibling.AccountID,
			UserID:      sibling.UserID,
			OperationID: reversalOp.ID,
			Direction:   sibling.Direction.Opposite(),
			Amount:      sibling.Amount,
			Status:      domain.EntryStatusPending,
			SourceTag:   reason,
			ReversalOf:  &originalID,
			CreatedAt:   now,
		}

		if err := uc.entryRepo.Append(ctx, tx, reversal); err != nil {
			return nil, err
		}

		reversalIDs = append(reversalIDs, reversal.ID)

		if err := uc.entryRepo.MarkReversed(ctx, tx, sibling.ID, now); err != nil {
			return nil, err
		}
	}

	reversals, err := uc.PromoteTx(ctx, tx, reversalIDs, now)
	if err != nil {
		return nil, err
	}

	if err := uc.operationRepo.UpdateStatus(ctx, tx, op.ID, domain.OperationStatusReversed, domain.ReasonNone, now); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   original.ID,
			AggregateType: domain.AggregateTypeEntry,
			EventType:     domain.EventTypeEntryReversed,
			Payload: map[string]any{
				"original_entry_id":     original.ID,
				"reversal_operation_id": reversalOp.ID,
				"account_id":            original.AccountID,
				"amount":                original.Amount.String(),
				"reason":                reason,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.invalidateBalances(ctx, reversals)

	if uc.metrics != nil {
		uc.metrics.EntriesReversed.Add(float64(len(reversals)))
	}

	return reversalOp, nil
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	AccountID string
	Statuses  []domain.EntryStatus
	Limit     int
	Offset    int
}

// EntriesFor lists an account's entries ordered by creation time.
func (uc *LedgerUseCase) EntriesFor(ctx context.Context, input ListEntriesInput) ([]*domain.Entry, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.entryRepo.ListByAccount(ctx, input.AccountID, input.Statuses, limit, offset)
}

// EntriesForOperation lists the sibling entries of one operation.
func (uc *LedgerUseCase) EntriesForOperation(ctx context.Context, operationID string) ([]*domain.Entry, error) {
	return uc.entryRepo.ListByOperation(ctx, operationID)
}

func (uc *LedgerUseCase) invalidateBalances(ctx context.Context, entries []*domain.Entry) {
	if uc.cache == nil {
		return
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.AccountID] {
			continue
		}

		seen[e.AccountID] = true
		_ = uc.cache.Delete(ctx, balanceCacheKey(e.AccountID))
	}
}

func balanceCacheKey(accountID string) string {
	return "balance:" + accountID
}
