package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/infrastructure/metrics"
)

// BalanceUseCase derives balances from the posted ledger. The running
// total maintained at promote time is the serving path; full
// re-aggregation stays available as the ground-truth check. The Redis
// copy is advisory only and re-derivable at any time.
type BalanceUseCase struct {
	accountRepo AccountRepository
	userRepo    UserRepository
	entryRepo   EntryRepository
	balanceRepo BalanceRepository
	cache       Cache
	metrics     *metrics.Metrics
}

// NewBalanceUseCase creates a new BalanceUseCase.
func NewBalanceUseCase(
	accountRepo AccountRepository,
	userRepo UserRepository,
	entryRepo EntryRepository,
	balanceRepo BalanceRepository,
	cache Cache,
	m *metrics.Metrics,
) *BalanceUseCase {
	return &BalanceUseCase{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		cache:       cache,
		metrics:     m,
	}
}

// BalanceOf returns the account's current balance. An account with no
// entries has balance zero.
func (uc *BalanceUseCase) BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, balanceCacheKey(accountID)); err == nil {
			if balance, parseErr := decimal.NewFromString(cached); parseErr == nil {
				if uc.metrics != nil {
					uc.metrics.BalanceCacheHits.Inc()
				}

				return balance, nil
			}
		}

		if uc.metrics != nil {
			uc.metrics.BalanceCacheMisses.Inc()
		}
	}

	balance, err := uc.balanceRepo.Get(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Set(ctx, balanceCacheKey(accountID), balance.String(), BalanceCacheTTL)
	}

	return balance, nil
}

// BalanceOfUser aggregates the balances of every account the user owns.
func (uc *BalanceUseCase) BalanceOfUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	return uc.balanceRepo.SumByOwner(ctx, userID)
}

// HeldFundsOfUser sums the user's pending entries: money attached to
// held movements, visible to operators but never in balance.
func (uc *BalanceUseCase) HeldFundsOfUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return decimal.Zero, err
	}

	return uc.entryRepo.SumPendingByUser(ctx, userID)
}

// RecomputeOf re-derives the balance by full aggregation over the
// finalized ledger and writes it back as the new running total. This
// is the reconciliation ground truth; the serving path never needs it.
func (uc *BalanceUseCase) RecomputeOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if _, err := uc.accountRepo.GetByID(ctx, accountID); err != nil {
		return decimal.Zero, err
	}

	credits, debits, err := uc.entryRepo.SumPostedByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	balance := credits.Sub(debits)

	if err := uc.balanceRepo.Set(ctx, accountID, balance, time.Now().UTC()); err != nil {
		return decimal.Zero, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, balanceCacheKey(accountID))
	}

	return balance, nil
}
