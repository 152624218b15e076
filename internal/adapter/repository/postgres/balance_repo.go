package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/usecase"
)

// BalanceRepository implements usecase.BalanceRepository over the
// account_balances running-total table. Rows are created lazily on
// the first posted entry; a missing row reads as zero.
type BalanceRepository struct {
	pool *pgxpool.Pool
}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(pool *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{pool: pool}
}

// Get reads an account's running balance.
func (r *BalanceRepository) Get(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var n pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM account_balances WHERE account_id = $1`,
		accountID,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}

// GetForUpdate reads the running balance under a row lock so the
// sufficient-funds check stays valid until commit.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	var n pgtype.Numeric

	err := pgxTx(tx).PgxTx().QueryRow(ctx, `
		SELECT balance FROM account_balances WHERE account_id = $1 FOR UPDATE`,
		accountID,
	).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}

		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}

// Apply adds a signed delta to the running balance, creating the row
// on first use.
func (r *BalanceRepository) Apply(ctx context.Context, tx usecase.Transaction, accountID string, delta decimal.Decimal, at time.Time) error {
	_, err := pgxTx(tx).PgxTx().Exec(ctx, `
		INSERT INTO account_balances (account_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET balance = account_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		accountID,
		decimalToNumeric(delta),
		timeToPgTimestamptz(at),
	)

	return err
}

// Set overwrites the running balance with a re-derived value.
func (r *BalanceRepository) Set(ctx context.Context, accountID string, balance decimal.Decimal, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account_balances (account_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET balance = EXCLUDED.balance, updated_at = EXCLUDED.updated_at`,
		accountID,
		decimalToNumeric(balance),
		timeToPgTimestamptz(at),
	)

	return err
}

// SumByOwner totals the running balances of every account a user owns.
func (r *BalanceRepository) SumByOwner(ctx context.Context, ownerUserID string) (decimal.Decimal, error) {
	var n pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.balance), 0)
		FROM account_balances b
		JOIN accounts a ON a.id = b.account_id
		WHERE a.owner_user_id = $1`,
		ownerUserID,
	).Scan(&n)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}
