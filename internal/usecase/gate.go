package usecase

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
)

// GatePolicy configures when KYC approval is required. Transfers
// always require it; deposits only at or above the threshold.
type GatePolicy struct {
	DepositKYCThreshold decimal.Decimal
}

// DefaultGatePolicy requires KYC for deposits of 1000 or more.
func DefaultGatePolicy() GatePolicy {
	return GatePolicy{DepositKYCThreshold: decimal.NewFromInt(1000)}
}

// GateState carries the accounts loaded during evaluation so the
// orchestrator can reuse them under the same locks.
type GateState struct {
	From *domain.Account
	To   *domain.Account
}

// TransactionGate checks the preconditions of a proposed movement
// before any ledger entries are created. Preconditions run in fixed
// order: account existence, then KYC, then sufficient funds. KYC is
// checked before balance so that an unapproved user never learns
// whether their balance would have sufficed.
type TransactionGate struct {
	accountRepo AccountRepository
	userRepo    UserRepository
	balanceRepo BalanceRepository
	policy      GatePolicy
}

// NewTransactionGate creates a new TransactionGate.
func NewTransactionGate(
	accountRepo AccountRepository,
	userRepo UserRepository,
	balanceRepo BalanceRepository,
	policy GatePolicy,
) *TransactionGate {
	return &TransactionGate{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		balanceRepo: balanceRepo,
		policy:      policy,
	}
}

// Evaluate decides whether the movement may proceed. When tx is
// non-nil the involved accounts and the source running balance are
// read under row locks, so the decision stays valid until the
// transaction commits. Rejections and holds are ordinary return
// values; an error means the state of the world could not be read.
func (g *TransactionGate) Evaluate(ctx context.Context, tx Transaction, m domain.Movement) (domain.Decision, *GateState, error) {
	if err := m.Validate(); err != nil {
		return domain.Decision{}, nil, err
	}

	state, rejected, err := g.loadAccounts(ctx, tx, m)
	if err != nil {
		return domain.Decision{}, nil, err
	}

	if rejected != nil {
		return *rejected, nil, nil
	}

	if m.Type == domain.MovementTypeTransfer && state.From.Currency != state.To.Currency {
		return domain.Decision{}, nil, domain.ErrCurrencyMismatch
	}

	if g.requiresKYC(m) {
		status, err := g.userRepo.KYCStatus(ctx, m.ActorUserID)
		if err != nil {
			return domain.Decision{}, nil, err
		}

		switch status {
		case domain.KYCStatusApproved:
			// proceed
		case domain.KYCStatusRejected:
			return domain.Rejected(domain.ReasonKYCRejected), nil, nil
		default:
			// Held, not dropped: the movement is parked as pending so
			// it can resume once KYC clears.
			return domain.Held(domain.ReasonKYCPending), state, nil
		}
	}

	if m.HasDebitSide() {
		balance, err := g.sourceBalance(ctx, tx, state.From.ID)
		if err != nil {
			return domain.Decision{}, nil, err
		}

		if balance.LessThan(m.Amount) {
			return domain.Rejected(domain.ReasonInsufficientFunds), nil, nil
		}
	}

	return domain.Approved(), state, nil
}

// loadAccounts resolves and checks the movement's account references.
// A nil decision means both sides exist and are active.
func (g *TransactionGate) loadAccounts(ctx context.Context, tx Transaction, m domain.Movement) (*GateState, *domain.Decision, error) {
	ids := make([]string, 0, 2)
	if m.FromAccountID != "" {
		ids = append(ids, m.FromAccountID)
	}

	if m.ToAccountID != "" && m.ToAccountID != m.FromAccountID {
		ids = append(ids, m.ToAccountID)
	}

	// Lock in sorted order (deadlock prevention).
	sort.Strings(ids)

	accounts, err := g.fetchAccounts(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}

	state := &GateState{}
	if m.FromAccountID != "" {
		state.From = byID[m.FromAccountID]
		if state.From == nil || !state.From.IsActive() {
			d := domain.Rejected(domain.ReasonNoAccount)
			return nil, &d, nil
		}
	}

	state.To = byID[m.ToAccountID]
	if state.To == nil || !state.To.IsActive() {
		d := domain.Rejected(domain.ReasonNoAccount)
		return nil, &d, nil
	}

	return state, nil, nil
}

func (g *TransactionGate) fetchAccounts(ctx context.Context, tx Transaction, ids []string) ([]*domain.Account, error) {
	if tx != nil {
		return g.accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	}

	accounts := make([]*domain.Account, 0, len(ids))

	for _, id := range ids {
		account, err := g.accountRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrAccountNotFound) {
				continue
			}

			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (g *TransactionGate) sourceBalance(ctx context.Context, tx Transaction, accountID string) (decimal.Decimal, error) {
	if tx != nil {
		return g.balanceRepo.GetForUpdate(ctx, tx, accountID)
	}

	return g.balanceRepo.Get(ctx, accountID)
}

func (g *TransactionGate) requiresKYC(m domain.Movement) bool {
	switch m.Type {
	case domain.MovementTypeTransfer:
		return true
	case domain.MovementTypeDeposit:
		return m.Amount.GreaterThanOrEqual(g.policy.DepositKYCThreshold)
	default:
		// Admin funding acts on behalf of the system reserve.
		return false
	}
}
