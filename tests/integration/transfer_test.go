package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/tests/testutil"
)

func TestTransferLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	s := newStack(t, testDB)

	alice := testDB.CreateTestUser(ctx, "alice", domain.KYCStatusApproved)
	bob := testDB.CreateTestUser(ctx, "bob", domain.KYCStatusApproved)
	from := testDB.CreateTestAccount(ctx, alice.ID, "USD")
	to := testDB.CreateTestAccount(ctx, bob.ID, "USD")
	testDB.FundAccount(ctx, from, decimal.NewFromInt(500))

	t.Run("approved transfer moves funds", func(t *testing.T) {
		result, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, to.ID, decimal.NewFromInt(200), "rent")
		if err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if result.Outcome != domain.OutcomeApproved {
			t.Fatalf("expected approved, got %s (%s)", result.Outcome, result.Reason)
		}
		if len(result.EntryIDs) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(result.EntryIDs))
		}

		fromBalance, err := s.Balance.BalanceOf(ctx, from.ID)
		if err != nil {
			t.Fatalf("balance lookup failed: %v", err)
		}
		if !fromBalance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected source balance 300, got %s", fromBalance)
		}

		toBalance, err := s.Balance.BalanceOf(ctx, to.ID)
		if err != nil {
			t.Fatalf("balance lookup failed: %v", err)
		}
		if !toBalance.Equal(decimal.NewFromInt(200)) {
			t.Errorf("expected destination balance 200, got %s", toBalance)
		}

		entries, err := s.Ledger.EntriesForOperation(ctx, result.OperationID)
		if err != nil {
			t.Fatalf("failed to list entries: %v", err)
		}
		for _, e := range entries {
			if e.Status != domain.EntryStatusPosted {
				t.Errorf("expected posted entry, got %s", e.Status)
			}
		}

		balanced, err := s.Reconciliation.VerifyOperation(ctx, result.OperationID)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !balanced {
			t.Error("expected operation to balance")
		}
	})

	t.Run("insufficient funds rejects and persists nothing", func(t *testing.T) {
		result, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, to.ID, decimal.NewFromInt(10000), "too-much")
		if err != nil {
			t.Fatalf("transfer errored: %v", err)
		}
		if result.Outcome != domain.OutcomeRejected {
			t.Fatalf("expected rejected, got %s", result.Outcome)
		}
		if result.Reason != domain.ReasonInsufficientFunds {
			t.Errorf("expected insufficient_funds, got %s", result.Reason)
		}
		if result.OperationID != "" {
			t.Error("rejected movement must not persist an operation")
		}

		var count int
		if err := testDB.Pool.QueryRow(ctx, `SELECT count(*) FROM operations WHERE status = 'held'`).Scan(&count); err != nil {
			t.Fatalf("count query failed: %v", err)
		}
		if count != 0 {
			t.Errorf("expected no held operations, found %d", count)
		}
	})

	t.Run("same account transfer fails", func(t *testing.T) {
		_, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, from.ID, decimal.NewFromInt(10), "")
		if err == nil {
			t.Fatal("expected error for same-account transfer")
		}
	})

	t.Run("currency mismatch fails", func(t *testing.T) {
		eur := testDB.CreateTestAccount(ctx, bob.ID, "EUR")

		_, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, eur.ID, decimal.NewFromInt(10), "")
		if err == nil {
			t.Fatal("expected error for currency mismatch")
		}
	})

	t.Run("frozen source account is rejected", func(t *testing.T) {
		if err := s.Account.FreezeAccount(ctx, from.ID); err != nil {
			t.Fatalf("freeze failed: %v", err)
		}
		defer func() {
			if err := s.Account.UnfreezeAccount(ctx, from.ID); err != nil {
				t.Fatalf("unfreeze failed: %v", err)
			}
		}()

		result, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, to.ID, decimal.NewFromInt(10), "")
		if err != nil {
			t.Fatalf("transfer errored: %v", err)
		}
		if result.Outcome != domain.OutcomeRejected {
			t.Fatalf("expected rejected, got %s", result.Outcome)
		}
		if result.Reason != domain.ReasonNoAccount {
			t.Errorf("expected no_account, got %s", result.Reason)
		}
	})
}
