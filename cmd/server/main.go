package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	httpAdapter "github.com/finanza/ledger/internal/adapter/http"
	"github.com/finanza/ledger/internal/adapter/http/handler"
	"github.com/finanza/ledger/internal/adapter/http/middleware"
	postgresRepo "github.com/finanza/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/finanza/ledger/internal/adapter/repository/redis"
	"github.com/finanza/ledger/internal/infrastructure/config"
	"github.com/finanza/ledger/internal/infrastructure/logger"
	"github.com/finanza/ledger/internal/infrastructure/metrics"
	"github.com/finanza/ledger/internal/infrastructure/outbox"
	"github.com/finanza/ledger/internal/infrastructure/postgres"
	"github.com/finanza/ledger/internal/infrastructure/redis"
	"github.com/finanza/ledger/internal/infrastructure/sweeper"
	"github.com/finanza/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()

	connCtx, connCancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPool(connCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	connCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier()
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	operationRepo := postgresRepo.NewOperationRepository(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	idGen := postgresRepo.NewULIDGenerator()

	m := metrics.New()

	// Use cases
	policy := usecase.DefaultGatePolicy()
	if threshold, err := decimal.NewFromString(cfg.DepositKYCThreshold); err == nil {
		policy.DepositKYCThreshold = threshold
	} else {
		log.Warn().Str("value", cfg.DepositKYCThreshold).Msg("invalid deposit kyc threshold, using default")
	}

	gate := usecase.NewTransactionGate(accountRepo, userRepo, balanceRepo, policy)
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, entryRepo, operationRepo, balanceRepo, outboxRepo, cache, idGen, m)
	movementUC := usecase.NewMovementUseCase(txManager, retrier, accountRepo, entryRepo, operationRepo, outboxRepo, auditRepo, gate, ledgerUC, idGen, m)
	accountUC := usecase.NewAccountUseCase(accountRepo, userRepo, idGen)
	balanceUC := usecase.NewBalanceUseCase(accountRepo, userRepo, entryRepo, balanceRepo, cache, m)
	kycUC := usecase.NewKYCUseCase(userRepo, outboxRepo, txManager, movementUC, idGen)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, entryRepo, balanceRepo, m)

	if _, err := accountUC.EnsureSystemReserve(ctx, cfg.ReserveCurrency); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure system reserve account")
	}

	// Handlers
	accountHandler := handler.NewAccountHandler(accountUC)
	movementHandler := handler.NewMovementHandler(movementUC)
	entryHandler := handler.NewEntryHandler(ledgerUC)
	balanceHandler := handler.NewBalanceHandler(balanceUC)
	kycHandler := handler.NewKYCHandler(kycUC)
	ledgerHandler := handler.NewLedgerHandler(movementUC, reconciliationUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   accountHandler,
		MovementHandler:  movementHandler,
		EntryHandler:     entryHandler,
		BalanceHandler:   balanceHandler,
		KYCHandler:       kycHandler,
		LedgerHandler:    ledgerHandler,
		HealthHandler:    healthHandler,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Background workers
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	publisher := outbox.NewEventPublisher(outbox.Config{
		OutboxRepo: outboxRepo,
		Publisher:  outbox.NewLogPublisher(nil),
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("outbox publisher stopped")
		}
	}()

	heldSweeper := sweeper.New(sweeper.Config{
		Sweep:    movementUC.SweepHeld,
		Interval: cfg.SweepInterval,
	})
	go func() {
		if err := heldSweeper.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("held operation sweeper stopped")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
