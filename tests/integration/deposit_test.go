package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/tests/testutil"
)

func TestDepositKYCThreshold(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	s := newStack(t, testDB)

	actor := testDB.CreateTestUser(ctx, "henry", domain.KYCStatusNotStarted)
	account := testDB.CreateTestAccount(ctx, actor.ID, "USD")

	t.Run("small deposit approved without verification", func(t *testing.T) {
		result, err := s.Movement.ExecuteDeposit(ctx, actor.ID, account.ID, decimal.NewFromInt(999), "atm")
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if result.Outcome != domain.OutcomeApproved {
			t.Fatalf("expected approved, got %s (%s)", result.Outcome, result.Reason)
		}

		balance, err := s.Balance.BalanceOf(ctx, account.ID)
		if err != nil {
			t.Fatalf("balance lookup failed: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(999)) {
			t.Errorf("expected balance 999, got %s", balance)
		}
	})

	t.Run("deposit at threshold held for unverified user", func(t *testing.T) {
		result, err := s.Movement.ExecuteDeposit(ctx, actor.ID, account.ID, decimal.NewFromInt(1000), "atm")
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if result.Outcome != domain.OutcomeHeld {
			t.Fatalf("expected held, got %s", result.Outcome)
		}
		if result.Reason != domain.ReasonKYCPending {
			t.Errorf("expected kyc_pending, got %s", result.Reason)
		}
	})

	t.Run("large deposit approved for verified user", func(t *testing.T) {
		verified := testDB.CreateTestUser(ctx, "ivy", domain.KYCStatusApproved)
		verifiedAcc := testDB.CreateTestAccount(ctx, verified.ID, "USD")

		result, err := s.Movement.ExecuteDeposit(ctx, verified.ID, verifiedAcc.ID, decimal.NewFromInt(50000), "wire")
		if err != nil {
			t.Fatalf("deposit failed: %v", err)
		}
		if result.Outcome != domain.OutcomeApproved {
			t.Fatalf("expected approved, got %s (%s)", result.Outcome, result.Reason)
		}
	})
}

func TestAdminFund(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	s := newStack(t, testDB)

	admin := testDB.CreateTestUser(ctx, "admin", domain.KYCStatusNotStarted)
	target := testDB.CreateTestAccount(ctx, admin.ID, "USD")

	t.Run("fails without a system reserve", func(t *testing.T) {
		_, err := s.Movement.ExecuteAdminFund(ctx, admin.ID, target.ID, decimal.NewFromInt(100))
		if err == nil {
			t.Fatal("expected error without reserve account")
		}
	})

	reserve := testDB.CreateSystemReserve(ctx, "USD")
	testDB.FundAccount(ctx, reserve, decimal.NewFromInt(1000))

	t.Run("draws from the reserve without a verification check", func(t *testing.T) {
		result, err := s.Movement.ExecuteAdminFund(ctx, admin.ID, target.ID, decimal.NewFromInt(300))
		if err != nil {
			t.Fatalf("admin fund failed: %v", err)
		}
		if result.Outcome != domain.OutcomeApproved {
			t.Fatalf("expected approved, got %s (%s)", result.Outcome, result.Reason)
		}

		targetBalance, err := s.Balance.BalanceOf(ctx, target.ID)
		if err != nil {
			t.Fatalf("balance lookup failed: %v", err)
		}
		if !targetBalance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected target balance 300, got %s", targetBalance)
		}

		reserveBalance, err := s.Balance.BalanceOf(ctx, reserve.ID)
		if err != nil {
			t.Fatalf("balance lookup failed: %v", err)
		}
		if !reserveBalance.Equal(decimal.NewFromInt(700)) {
			t.Errorf("expected reserve balance 700, got %s", reserveBalance)
		}

		balanced, err := s.Reconciliation.VerifyOperation(ctx, result.OperationID)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !balanced {
			t.Error("expected admin fund operation to balance")
		}
	})

	t.Run("rejects when the reserve runs dry", func(t *testing.T) {
		result, err := s.Movement.ExecuteAdminFund(ctx, admin.ID, target.ID, decimal.NewFromInt(100000))
		if err != nil {
			t.Fatalf("admin fund errored: %v", err)
		}
		if result.Outcome != domain.OutcomeRejected {
			t.Fatalf("expected rejected, got %s", result.Outcome)
		}
		if result.Reason != domain.ReasonInsufficientFunds {
			t.Errorf("expected insufficient_funds, got %s", result.Reason)
		}
	})
}

func TestEnsureSystemReserveIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	s := newStack(t, testDB)

	first, err := s.Account.EnsureSystemReserve(ctx, "USD")
	if err != nil {
		t.Fatalf("ensure reserve failed: %v", err)
	}
	if first.Type != domain.AccountTypeSystemReserve {
		t.Fatalf("expected system_reserve account, got %s", first.Type)
	}

	second, err := s.Account.EnsureSystemReserve(ctx, "USD")
	if err != nil {
		t.Fatalf("second ensure reserve failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the same reserve account, got %s and %s", first.ID, second.ID)
	}

	var count int
	if err := testDB.Pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE type = 'system_reserve'`).Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one reserve account, found %d", count)
	}
}
