package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// BalanceCacheTTL bounds how stale the advisory Redis balance copy may get.
	BalanceCacheTTL = 30 * time.Second

	// SweepBatchSize is how many held operations one sweep pass re-evaluates.
	SweepBatchSize = 100

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)
