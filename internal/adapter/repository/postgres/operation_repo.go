package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

const operationColumns = `id, type, actor_user_id, from_account_id, to_account_id, amount, status, reason, source_tag, reversal_of, created_at, updated_at`

// OperationRepository implements usecase.OperationRepository.
type OperationRepository struct {
	pool *pgxpool.Pool
}

// NewOperationRepository creates a new OperationRepository.
func NewOperationRepository(pool *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{pool: pool}
}

// Create inserts an operation.
func (r *OperationRepository) Create(ctx context.Context, tx usecase.Transaction, op *domain.Operation) error {
	var from pgtype.Text
	if op.FromAccountID != "" {
		from = pgtype.Text{String: op.FromAccountID, Valid: true}
	}

	_, err := pgxTx(tx).PgxTx().Exec(ctx, `
		INSERT INTO operations (id, type, actor_user_id, from_account_id, to_account_id, amount, status, reason, source_tag, reversal_of, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		op.ID,
		string(op.Type),
		op.ActorUserID,
		from,
		op.ToAccountID,
		decimalToNumeric(op.Amount),
		string(op.Status),
		string(op.Reason),
		op.SourceTag,
		stringPtrToText(op.ReversalOf),
		timeToPgTimestamptz(op.CreatedAt),
		timeToPgTimestamptz(op.UpdatedAt),
	)

	return err
}

// GetByID retrieves an operation by ID.
func (r *OperationRepository) GetByID(ctx context.Context, id string) (*domain.Operation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+operationColumns+` FROM operations WHERE id = $1`, id)

	return scanOperation(row)
}

// GetByIDForUpdate locks and retrieves an operation.
func (r *OperationRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Operation, error) {
	row := pgxTx(tx).PgxTx().QueryRow(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE id = $1
		FOR UPDATE`,
		id,
	)

	return scanOperation(row)
}

// UpdateStatus transitions an operation's lifecycle state.
func (r *OperationRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.OperationStatus, reason domain.ReasonCode, updatedAt time.Time) error {
	tag, err := pgxTx(tx).PgxTx().Exec(ctx, `
		UPDATE operations
		SET status = $1, reason = $2, updated_at = $3
		WHERE id = $4`,
		string(status),
		string(reason),
		timeToPgTimestamptz(updatedAt),
		id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrOperationNotFound
	}

	return nil
}

// ListHeld retrieves held operations, oldest first.
func (r *OperationRepository) ListHeld(ctx context.Context, limit int) ([]*domain.Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2`,
		string(domain.OperationStatusHeld),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ListHeldByUser retrieves one user's held operations, oldest first.
func (r *OperationRepository) ListHeldByUser(ctx context.Context, userID string, limit int) ([]*domain.Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE status = $1 AND actor_user_id = $2
		ORDER BY created_at
		LIMIT $3`,
		string(domain.OperationStatusHeld),
		userID,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ListByAccount retrieves operations touching an account, newest first.
func (r *OperationRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Operation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+operationColumns+`
		FROM operations
		WHERE from_account_id = $1 OR to_account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOperations(rows)
}

func scanOperations(rows pgx.Rows) ([]*domain.Operation, error) {
	var ops []*domain.Operation

	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, rows.Err()
}

func scanOperation(row pgx.Row) (*domain.Operation, error) {
	var (
		op         domain.Operation
		opType     string
		from       pgtype.Text
		amount     pgtype.Numeric
		status     string
		reason     string
		reversalOf pgtype.Text
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&op.ID,
		&opType,
		&op.ActorUserID,
		&from,
		&op.ToAccountID,
		&amount,
		&status,
		&reason,
		&op.SourceTag,
		&reversalOf,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOperationNotFound
		}

		return nil, err
	}

	op.Type = domain.MovementType(opType)
	if from.Valid {
		op.FromAccountID = from.String
	}
	op.Amount = numericToDecimal(amount)
	op.Status = domain.OperationStatus(status)
	op.Reason = domain.ReasonCode(reason)
	op.ReversalOf = textToStringPtr(reversalOf)
	op.CreatedAt = createdAt.Time
	op.UpdatedAt = updatedAt.Time

	return &op, nil
}
