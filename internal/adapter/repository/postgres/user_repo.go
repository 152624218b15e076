package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finanza/ledger/internal/domain"
)

// UserRepository implements usecase.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, kyc_status, is_system, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID,
		user.Name,
		user.Email,
		string(user.KYCStatus),
		user.System,
		timeToPgTimestamptz(user.CreatedAt),
		timeToPgTimestamptz(user.UpdatedAt),
	)

	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		user      domain.User
		kyc       string
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, kyc_status, is_system, created_at, updated_at
		FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Email, &kyc, &user.System, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}

		return nil, err
	}

	user.KYCStatus = domain.KYCStatus(kyc)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time

	return &user, nil
}

// KYCStatus reads just the verification status.
func (r *UserRepository) KYCStatus(ctx context.Context, userID string) (domain.KYCStatus, error) {
	var kyc string

	err := r.pool.QueryRow(ctx, `SELECT kyc_status FROM users WHERE id = $1`, userID).Scan(&kyc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrUserNotFound
		}

		return "", err
	}

	return domain.KYCStatus(kyc), nil
}

// SetKYCStatus records a verification decision.
func (r *UserRepository) SetKYCStatus(ctx context.Context, userID string, status domain.KYCStatus, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET kyc_status = $1, updated_at = $2
		WHERE id = $3`,
		string(status),
		timeToPgTimestamptz(updatedAt),
		userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}
