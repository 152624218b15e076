package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/finanza/ledger/internal/adapter/http/handler"
	"github.com/finanza/ledger/internal/adapter/http/middleware"
	"github.com/finanza/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	MovementHandler  *handler.MovementHandler
	EntryHandler     *handler.EntryHandler
	BalanceHandler   *handler.BalanceHandler
	KYCHandler       *handler.KYCHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(log.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Users and KYC
		r.Route("/users", func(r chi.Router) {
			r.Post("/", cfg.KYCHandler.CreateUser)
			r.Get("/{id}", cfg.KYCHandler.GetUser)
			r.Put("/{id}/kyc", cfg.KYCHandler.UpdateKYC)
			r.Get("/{id}/balance", cfg.BalanceHandler.GetUserBalance)
		})

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.ListByOwner)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/freeze", cfg.AccountHandler.Freeze)
			r.Post("/{id}/unfreeze", cfg.AccountHandler.Unfreeze)
			r.Get("/{id}/balance", cfg.BalanceHandler.GetAccountBalance)
			r.Post("/{id}/balance/recompute", cfg.BalanceHandler.RecomputeAccountBalance)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/operations", cfg.MovementHandler.ListByAccount)
		})

		// Movements
		r.Post("/transfers", cfg.MovementHandler.CreateTransfer)
		r.Post("/deposits", cfg.MovementHandler.CreateDeposit)
		r.Post("/admin/fund", cfg.MovementHandler.CreateAdminFund)

		// Operations
		r.Route("/operations", func(r chi.Router) {
			r.Get("/{id}", cfg.MovementHandler.GetOperation)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByOperation)
			r.Get("/{id}/verify", cfg.LedgerHandler.VerifyOperation)
		})

		// Entries
		r.Post("/entries/{id}/reverse", cfg.EntryHandler.Reverse)

		// Operator surface
		r.Route("/admin", func(r chi.Router) {
			r.Post("/sweep", cfg.LedgerHandler.Sweep)
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
		})
	})

	return r
}
