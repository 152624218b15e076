package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
	"github.com/finanza/ledger/internal/usecase/mocks"
)

type balanceFixture struct {
	accounts *mocks.MockAccountRepository
	users    *mocks.MockUserRepository
	entries  *mocks.MockEntryRepository
	balances *mocks.MockBalanceRepository
	cache    *mocks.MockCache
	uc       *usecase.BalanceUseCase
}

func newBalanceFixture() *balanceFixture {
	f := &balanceFixture{
		accounts: mocks.NewMockAccountRepository(),
		users:    mocks.NewMockUserRepository(),
		entries:  mocks.NewMockEntryRepository(),
		balances: mocks.NewMockBalanceRepository(),
		cache:    mocks.NewMockCache(),
	}

	f.uc = usecase.NewBalanceUseCase(f.accounts, f.users, f.entries, f.balances, f.cache, nil)

	return f
}

func TestBalanceUseCase_BalanceOf(t *testing.T) {
	f := newBalanceFixture()
	f.accounts.Put(activeAccount("acc-1", "user-1"))
	f.balances.Put("acc-1", decimal.NewFromInt(250))

	got, err := f.uc.BalanceOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(250)) {
		t.Errorf("balance = %s, want 250", got)
	}

	// The first read warms the cache.
	if cached, err := f.cache.Get(context.Background(), "balance:acc-1"); err != nil || cached != "250" {
		t.Errorf("cache = %q (%v), want 250", cached, err)
	}
}

func TestBalanceUseCase_BalanceOf_EmptyAccountIsZero(t *testing.T) {
	f := newBalanceFixture()
	f.accounts.Put(activeAccount("acc-1", "user-1"))

	got, err := f.uc.BalanceOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("balance = %s, want 0", got)
	}
}

func TestBalanceUseCase_BalanceOf_UnknownAccount(t *testing.T) {
	f := newBalanceFixture()

	_, err := f.uc.BalanceOf(context.Background(), "acc-missing")
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBalanceUseCase_BalanceOf_CacheHitSkipsStore(t *testing.T) {
	f := newBalanceFixture()
	f.accounts.Put(activeAccount("acc-1", "user-1"))
	_ = f.cache.Set(context.Background(), "balance:acc-1", "42", 0)

	f.balances.GetFunc = func(ctx context.Context, accountID string) (decimal.Decimal, error) {
		t.Error("store must not be read on cache hit")
		return decimal.Zero, nil
	}

	got, err := f.uc.BalanceOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(42)) {
		t.Errorf("balance = %s, want 42", got)
	}
}

func TestBalanceUseCase_BalanceOf_GarbageCacheFallsThrough(t *testing.T) {
	f := newBalanceFixture()
	f.accounts.Put(activeAccount("acc-1", "user-1"))
	f.balances.Put("acc-1", decimal.NewFromInt(77))
	_ = f.cache.Set(context.Background(), "balance:acc-1", "not-a-number", 0)

	got, err := f.uc.BalanceOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(77)) {
		t.Errorf("balance = %s, want 77 from store", got)
	}
}

func TestBalanceUseCase_BalanceOfUser(t *testing.T) {
	f := newBalanceFixture()
	f.users.Put(approvedUser("user-1"))
	f.balances.SumByOwnerFunc = func(ctx context.Context, ownerUserID string) (decimal.Decimal, error) {
		if ownerUserID != "user-1" {
			t.Errorf("owner = %s, want user-1", ownerUserID)
		}
		return decimal.NewFromInt(300), nil
	}

	got, err := f.uc.BalanceOfUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(300)) {
		t.Errorf("balance = %s, want 300", got)
	}

	if _, err := f.uc.BalanceOfUser(context.Background(), "nobody"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBalanceUseCase_HeldFundsOfUser(t *testing.T) {
	f := newBalanceFixture()
	f.users.Put(approvedUser("user-1"))
	now := nowUTC()

	// One held debit and one posted debit: only the pending one counts.
	f.entries.Put(&domain.Entry{
		ID: "e-1", AccountID: "acc-1", UserID: "user-1", OperationID: "op-1",
		Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(100),
		Status: domain.EntryStatusPending, CreatedAt: now,
	})
	f.entries.Put(&domain.Entry{
		ID: "e-2", AccountID: "acc-1", UserID: "user-1", OperationID: "op-2",
		Direction: domain.DirectionDebit, Amount: decimal.NewFromInt(40),
		Status: domain.EntryStatusPosted, CreatedAt: now, PostedAt: &now,
	})

	got, err := f.uc.HeldFundsOfUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("held funds = %s, want 100", got)
	}
}

func TestBalanceUseCase_RecomputeOf(t *testing.T) {
	f := newBalanceFixture()
	f.accounts.Put(activeAccount("acc-1", "user-1"))
	now := nowUTC()

	put := func(id string, dir domain.Direction, amount int64, status domain.EntryStatus) {
		e := &domain.Entry{
			ID: id, AccountID: "acc-1", UserID: "user-1", OperationID: "op-" + id,
			Direction: dir, Amount: decimal.NewFromInt(amount),
			Status: status, CreatedAt: now,
		}
		if status != domain.EntryStatusPending {
			e.PostedAt = &now
		}
		f.entries.Put(e)
	}

	put("e-1", domain.DirectionCredit, 500, domain.EntryStatusPosted)
	put("e-2", domain.DirectionDebit, 120, domain.EntryStatusPosted)
	// Pending and voided entries never count.
	put("e-3", domain.DirectionCredit, 999, domain.EntryStatusPending)
	put("e-4", domain.DirectionDebit, 999, domain.EntryStatusVoided)
	// A reversed pair stays counted and nets out.
	put("e-5", domain.DirectionDebit, 50, domain.EntryStatusReversed)
	put("e-6", domain.DirectionCredit, 50, domain.EntryStatusPosted)

	got, err := f.uc.RecomputeOf(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(380)) {
		t.Errorf("recomputed = %s, want 380", got)
	}
	if stored := f.balances.Balance("acc-1"); !stored.Equal(got) {
		t.Errorf("stored running total = %s, want %s", stored, got)
	}
}
