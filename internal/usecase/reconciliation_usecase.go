package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/infrastructure/metrics"
)

// AccountDrift reports one account whose running balance no longer
// matches the sum of its posted entries.
type AccountDrift struct {
	AccountID string
	Running   decimal.Decimal
	Computed  decimal.Decimal
	Delta     decimal.Decimal
}

// ConsistencyReport is the result of one full ledger check.
type ConsistencyReport struct {
	CheckedAccounts      int
	Drifts               []AccountDrift
	UnbalancedOperations []string
	PostedCredits        decimal.Decimal
	PostedDebits         decimal.Decimal
	CheckedAt            time.Time
}

// Consistent reports whether the check found no drift and no
// unbalanced operation group.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Drifts) == 0 && len(r.UnbalancedOperations) == 0
}

// ReconciliationUseCase verifies the ledger's structural invariants:
// every transfer group sums to zero and every running balance matches
// a recomputation from posted entries. Deposits are one-sided on
// purpose, so the global totals are reported but never asserted equal.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	entryRepo   EntryRepository
	balanceRepo BalanceRepository
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	balanceRepo BalanceRepository,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		metrics:     m,
	}
}

const reconcileBatchSize = 500

// CheckConsistency scans every account and operation group and
// returns what it found. It never mutates the ledger.
func (uc *ReconciliationUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report := &ConsistencyReport{CheckedAt: time.Now().UTC()}

	offset := 0
	for {
		accounts, err := uc.accountRepo.List(ctx, reconcileBatchSize, offset)
		if err != nil {
			return nil, err
		}

		for _, account := range accounts {
			drift, err := uc.checkAccount(ctx, account.ID)
			if err != nil {
				return nil, err
			}

			report.CheckedAccounts++

			if drift != nil {
				report.Drifts = append(report.Drifts, *drift)
			}
		}

		if len(accounts) < reconcileBatchSize {
			break
		}

		offset += reconcileBatchSize
	}

	unbalanced, err := uc.entryRepo.UnbalancedOperations(ctx, reconcileBatchSize)
	if err != nil {
		return nil, err
	}
	report.UnbalancedOperations = unbalanced

	credits, debits, err := uc.entryRepo.SumAllPosted(ctx)
	if err != nil {
		return nil, err
	}
	report.PostedCredits = credits
	report.PostedDebits = debits

	return report, nil
}

func (uc *ReconciliationUseCase) checkAccount(ctx context.Context, accountID string) (*AccountDrift, error) {
	running, err := uc.balanceRepo.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}

	credits, debits, err := uc.entryRepo.SumPostedByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	computed := credits.Sub(debits)
	delta := running.Sub(computed)

	if uc.metrics != nil {
		drift, _ := delta.Float64()
		uc.metrics.ReconciliationDrift.WithLabelValues(accountID).Set(drift)
	}

	if delta.IsZero() {
		return nil, nil
	}

	return &AccountDrift{
		AccountID: accountID,
		Running:   running,
		Computed:  computed,
		Delta:     delta,
	}, nil
}

// VerifyOperation recomputes one operation group's entry sums. Groups
// created by transfers and admin funding must net to zero.
func (uc *ReconciliationUseCase) VerifyOperation(ctx context.Context, operationID string) (bool, error) {
	entries, err := uc.entryRepo.ListByOperation(ctx, operationID)
	if err != nil {
		return false, err
	}

	if len(entries) == 0 {
		return false, domain.ErrOperationNotFound
	}

	sum := decimal.Zero
	for _, e := range entries {
		if e.Status == domain.EntryStatusVoided {
			continue
		}
		sum = sum.Add(e.SignedAmount())
	}

	return sum.IsZero(), nil
}
