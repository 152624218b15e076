package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/finanza/ledger/internal/domain"
)

// HeldSweeper re-evaluates one user's held operations after a KYC
// change. MovementUseCase satisfies it.
type HeldSweeper interface {
	SweepHeldForUser(ctx context.Context, userID string) (*SweepReport, error)
}

// KYCUseCase manages users and their verification status.
type KYCUseCase struct {
	userRepo   UserRepository
	outboxRepo OutboxRepository
	txManager  TransactionManager
	sweeper    HeldSweeper
	idGen      IDGenerator
}

// NewKYCUseCase creates a new KYCUseCase. The sweeper may be nil; KYC
// updates then rely on the periodic sweep alone.
func NewKYCUseCase(userRepo UserRepository, outboxRepo OutboxRepository, txManager TransactionManager, sweeper HeldSweeper, idGen IDGenerator) *KYCUseCase {
	return &KYCUseCase{
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		txManager:  txManager,
		sweeper:    sweeper,
		idGen:      idGen,
	}
}

// CreateUser registers a user. New users start with KYC not started.
func (uc *KYCUseCase) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:        uc.idGen.Generate(),
		Name:      name,
		Email:     email,
		KYCStatus: domain.KYCStatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (uc *KYCUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// UpdateKYCStatus records a verification decision and, when one was
// reached, immediately re-evaluates the user's held operations so
// they do not wait for the next periodic sweep.
func (uc *KYCUseCase) UpdateKYCStatus(ctx context.Context, userID string, status domain.KYCStatus) (*SweepReport, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidKYCStatus, status)
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.System {
		return nil, fmt.Errorf("%w: system users are exempt from verification", domain.ErrInvalidKYCStatus)
	}

	now := time.Now().UTC()

	if err := uc.userRepo.SetKYCStatus(ctx, userID, status, now); err != nil {
		return nil, err
	}

	uc.emitKYCEvent(ctx, userID, user.KYCStatus, status, now)

	if uc.sweeper == nil || !decided(status) {
		return &SweepReport{SweptAt: now}, nil
	}

	return uc.sweeper.SweepHeldForUser(ctx, userID)
}

// decided reports whether a status is a terminal verification outcome.
func decided(status domain.KYCStatus) bool {
	return status == domain.KYCStatusApproved || status == domain.KYCStatusRejected
}

func (uc *KYCUseCase) emitKYCEvent(ctx context.Context, userID string, from, to domain.KYCStatus, now time.Time) {
	if uc.outboxRepo == nil || uc.txManager == nil {
		return
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   userID,
		AggregateType: domain.AggregateTypeUser,
		EventType:     domain.EventTypeKYCUpdated,
		Payload: map[string]any{
			"user_id": userID,
			"from":    string(from),
			"to":      string(to),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return
	}

	_ = tx.Commit(ctx)
}
