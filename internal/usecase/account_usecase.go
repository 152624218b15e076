package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/finanza/ledger/internal/domain"
)

// AccountUseCase handles account lifecycle.
type AccountUseCase struct {
	accountRepo AccountRepository
	userRepo    UserRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, userRepo UserRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		idGen:       idGen,
	}
}

// CreateAccount opens a user account in the given currency.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, ownerUserID, currency string) (*domain.Account, error) {
	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.GetByID(ctx, ownerUserID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:          uc.idGen.Generate(),
		OwnerUserID: ownerUserID,
		Type:        domain.AccountTypeUser,
		Status:      domain.AccountStatusActive,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsByOwner lists a user's accounts.
func (uc *AccountUseCase) ListAccountsByOwner(ctx context.Context, ownerUserID string) ([]*domain.Account, error) {
	return uc.accountRepo.ListByOwner(ctx, ownerUserID)
}

// FreezeAccount marks an account frozen. Frozen accounts fail the
// gate on both sides of a movement.
func (uc *AccountUseCase) FreezeAccount(ctx context.Context, id string) error {
	if _, err := uc.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.accountRepo.UpdateStatus(ctx, id, domain.AccountStatusFrozen, time.Now().UTC())
}

// UnfreezeAccount reactivates a frozen account.
func (uc *AccountUseCase) UnfreezeAccount(ctx context.Context, id string) error {
	if _, err := uc.accountRepo.GetByID(ctx, id); err != nil {
		return err
	}

	return uc.accountRepo.UpdateStatus(ctx, id, domain.AccountStatusActive, time.Now().UTC())
}

// SystemReserveOwner is the synthetic user that owns the reserve
// account. It is created alongside the reserve when seeding.
const SystemReserveOwner = "system"

// EnsureSystemReserve seeds the system reserve account and its owner
// user if they do not exist yet. It is idempotent and safe to run on
// every startup.
func (uc *AccountUseCase) EnsureSystemReserve(ctx context.Context, currency string) (*domain.Account, error) {
	reserve, err := uc.accountRepo.GetSystemReserve(ctx)
	if err == nil {
		return reserve, nil
	}

	if !errors.Is(err, domain.ErrSystemReserveMissing) {
		return nil, err
	}

	if err := domain.ValidateCurrency(currency); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	if _, err := uc.userRepo.GetByID(ctx, SystemReserveOwner); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}

		owner := &domain.User{
			ID:        SystemReserveOwner,
			Name:      "System Reserve",
			KYCStatus: domain.KYCStatusApproved,
			System:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := uc.userRepo.Create(ctx, owner); err != nil {
			return nil, err
		}
	}

	reserve = &domain.Account{
		ID:          uc.idGen.Generate(),
		OwnerUserID: SystemReserveOwner,
		Type:        domain.AccountTypeSystemReserve,
		Status:      domain.AccountStatusActive,
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.accountRepo.Create(ctx, reserve); err != nil {
		return nil, err
	}

	return reserve, nil
}
