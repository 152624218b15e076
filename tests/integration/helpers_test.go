package integration

import (
	"testing"

	"github.com/finanza/ledger/internal/adapter/repository/postgres"
	"github.com/finanza/ledger/internal/usecase"
	"github.com/finanza/ledger/tests/testutil"
)

// stack bundles the wired use cases backing most integration tests.
// Cache and metrics are left nil so tests exercise the store directly.
type stack struct {
	Movement       *usecase.MovementUseCase
	Ledger         *usecase.LedgerUseCase
	Balance        *usecase.BalanceUseCase
	KYC            *usecase.KYCUseCase
	Account        *usecase.AccountUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

func newStack(t *testing.T, testDB *testutil.TestDB) *stack {
	t.Helper()

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	retrier := postgres.NewRetrier()
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	operationRepo := postgres.NewOperationRepository(pool)
	balanceRepo := postgres.NewBalanceRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()

	gate := usecase.NewTransactionGate(accountRepo, userRepo, balanceRepo, usecase.DefaultGatePolicy())
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, operationRepo, balanceRepo, outboxRepo, nil, idGen, nil)
	movementUC := usecase.NewMovementUseCase(txManager, retrier, accountRepo, entryRepo, operationRepo, outboxRepo, auditRepo, gate, ledgerUC, idGen, nil)
	kycUC := usecase.NewKYCUseCase(userRepo, outboxRepo, txManager, movementUC, idGen)
	accountUC := usecase.NewAccountUseCase(accountRepo, userRepo, idGen)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, userRepo, entryRepo, balanceRepo, nil, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, balanceRepo, nil)

	return &stack{
		Movement:       movementUC,
		Ledger:         ledgerUC,
		Balance:        balanceUC,
		KYC:            kycUC,
		Account:        accountUC,
		Reconciliation: reconciliationUC,
	}
}
