package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/adapter/http/handler"
	apimiddleware "github.com/finanza/ledger/internal/adapter/http/middleware"
	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"actor_user_id":"user-1","from_account_id":"acc-1","to_account_id":"acc-2","amount":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/users/",
		"PUT /api/v1/users/{id}/kyc",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/{id}/balance",
		"POST /api/v1/transfers",
		"POST /api/v1/deposits",
		"POST /api/v1/admin/fund",
		"POST /api/v1/entries/{id}/reverse",
		"POST /api/v1/admin/sweep",
		"GET /api/v1/admin/consistency",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	cfg := RouterConfig{
		HealthHandler:   &handler.HealthHandler{},
		AccountHandler:  handler.NewAccountHandler(stubAccountService{}),
		MovementHandler: handler.NewMovementHandler(stubMovementService{}),
		EntryHandler:    handler.NewEntryHandler(stubLedgerService{}),
		BalanceHandler:  handler.NewBalanceHandler(stubBalanceService{}),
		KYCHandler:      handler.NewKYCHandler(stubKYCService{}),
		LedgerHandler:   handler.NewLedgerHandler(stubSweepService{}, stubConsistencyService{}),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubAccountService struct{}

func (stubAccountService) CreateAccount(ctx context.Context, ownerUserID, currency string) (*domain.Account, error) {
	return &domain.Account{ID: "acc"}, nil
}

func (stubAccountService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return &domain.Account{ID: id}, nil
}

func (stubAccountService) ListAccountsByOwner(ctx context.Context, ownerUserID string) ([]*domain.Account, error) {
	return []*domain.Account{}, nil
}

func (stubAccountService) FreezeAccount(ctx context.Context, id string) error { return nil }

func (stubAccountService) UnfreezeAccount(ctx context.Context, id string) error { return nil }

type stubMovementService struct{}

func (stubMovementService) ExecuteTransfer(ctx context.Context, actorUserID, fromAccountID, toAccountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error) {
	return &domain.OperationResult{OperationID: "op", Outcome: domain.OutcomeApproved}, nil
}

func (stubMovementService) ExecuteDeposit(ctx context.Context, actorUserID, accountID string, amount decimal.Decimal, sourceTag string) (*domain.OperationResult, error) {
	return &domain.OperationResult{OperationID: "op", Outcome: domain.OutcomeApproved}, nil
}

func (stubMovementService) ExecuteAdminFund(ctx context.Context, actorUserID, toAccountID string, amount decimal.Decimal) (*domain.OperationResult, error) {
	return &domain.OperationResult{OperationID: "op", Outcome: domain.OutcomeApproved}, nil
}

func (stubMovementService) GetOperation(ctx context.Context, id string) (*domain.Operation, error) {
	return &domain.Operation{ID: id}, nil
}

func (stubMovementService) ListOperationsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	return []*domain.Operation{}, nil
}

type stubLedgerService struct{}

func (stubLedgerService) EntriesFor(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.Entry, error) {
	return []*domain.Entry{}, nil
}

func (stubLedgerService) EntriesForOperation(ctx context.Context, operationID string) ([]*domain.Entry, error) {
	return []*domain.Entry{}, nil
}

func (stubLedgerService) Reverse(ctx context.Context, entryID, reason string) (*domain.Operation, error) {
	return &domain.Operation{ID: "op"}, nil
}

type stubBalanceService struct{}

func (stubBalanceService) BalanceOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubBalanceService) BalanceOfUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubBalanceService) HeldFundsOfUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (stubBalanceService) RecomputeOf(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubKYCService struct{}

func (stubKYCService) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	return &domain.User{ID: "user"}, nil
}

func (stubKYCService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (stubKYCService) UpdateKYCStatus(ctx context.Context, userID string, status domain.KYCStatus) (*usecase.SweepReport, error) {
	return &usecase.SweepReport{}, nil
}

type stubSweepService struct{}

func (stubSweepService) SweepHeld(ctx context.Context) (*usecase.SweepReport, error) {
	return &usecase.SweepReport{}, nil
}

type stubConsistencyService struct{}

func (stubConsistencyService) CheckConsistency(ctx context.Context) (*usecase.ConsistencyReport, error) {
	return &usecase.ConsistencyReport{}, nil
}

func (stubConsistencyService) VerifyOperation(ctx context.Context, operationID string) (bool, error) {
	return true, nil
}

type stubIdempotencyStore struct {
	checkCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}
