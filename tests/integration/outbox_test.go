package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/adapter/repository/postgres"
	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/tests/testutil"
)

func TestOutboxEventsForApprovedTransfer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	s := newStack(t, testDB)
	outboxRepo := postgres.NewOutboxRepository(testDB.Pool)

	alice := testDB.CreateTestUser(ctx, "alice", domain.KYCStatusApproved)
	bob := testDB.CreateTestUser(ctx, "bob", domain.KYCStatusApproved)
	from := testDB.CreateTestAccount(ctx, alice.ID, "USD")
	to := testDB.CreateTestAccount(ctx, bob.ID, "USD")
	testDB.FundAccount(ctx, from, decimal.NewFromInt(500))

	result, err := s.Movement.ExecuteTransfer(ctx, alice.ID, from.ID, to.ID, decimal.NewFromInt(100), "")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if result.Outcome != domain.OutcomeApproved {
		t.Fatalf("expected approved, got %s", result.Outcome)
	}

	events, err := outboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one outbox event for an approved transfer")
	}

	var found bool
	for _, e := range events {
		if e.AggregateID == result.OperationID {
			found = true
		}
	}
	if !found {
		t.Errorf("no outbox event references operation %s", result.OperationID)
	}

	// Publishing is at-least-once; marking removes an event from the
	// unpublished set.
	if err := outboxRepo.MarkPublished(ctx, events[0].ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}

	remaining, err := outboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("failed to fetch unpublished events: %v", err)
	}
	if len(remaining) != len(events)-1 {
		t.Errorf("expected %d unpublished events, got %d", len(events)-1, len(remaining))
	}
}
