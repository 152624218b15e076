package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finanza/ledger/internal/domain"
	"github.com/finanza/ledger/internal/usecase"
)

const entryColumns = `id, account_id, user_id, operation_id, direction, amount, status, source_tag, reversal_of, created_at, posted_at`

// EntryRepository implements usecase.EntryRepository over the
// append-only ledger_entries table.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Append inserts a pending entry.
func (r *EntryRepository) Append(ctx context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	_, err := pgxTx(tx).PgxTx().Exec(ctx, `
		INSERT INTO ledger_entries (id, account_id, user_id, operation_id, direction, amount, status, source_tag, reversal_of, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID,
		entry.AccountID,
		entry.UserID,
		entry.OperationID,
		string(entry.Direction),
		decimalToNumeric(entry.Amount),
		string(entry.Status),
		entry.SourceTag,
		stringPtrToText(entry.ReversalOf),
		timeToPgTimestamptz(entry.CreatedAt),
	)

	return err
}

// GetByID retrieves an entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM ledger_entries WHERE id = $1`, id)

	return scanEntry(row)
}

// GetByIDsForUpdate locks and retrieves a group of entries.
func (r *EntryRepository) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Entry, error) {
	rows, err := pgxTx(tx).PgxTx().Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Promote transitions pending entries to posted. Only pending rows
// are affected; the returned count lets the caller detect a partial
// group.
func (r *EntryRepository) Promote(ctx context.Context, tx usecase.Transaction, ids []string, postedAt time.Time) (int64, error) {
	tag, err := pgxTx(tx).PgxTx().Exec(ctx, `
		UPDATE ledger_entries
		SET status = $1, posted_at = $2
		WHERE id = ANY($3) AND status = $4`,
		string(domain.EntryStatusPosted),
		timeToPgTimestamptz(postedAt),
		ids,
		string(domain.EntryStatusPending),
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// MarkReversed flags a posted entry as reversed.
func (r *EntryRepository) MarkReversed(ctx context.Context, tx usecase.Transaction, id string, at time.Time) error {
	tag, err := pgxTx(tx).PgxTx().Exec(ctx, `
		UPDATE ledger_entries
		SET status = $1
		WHERE id = $2 AND status = $3`,
		string(domain.EntryStatusReversed),
		id,
		string(domain.EntryStatusPosted),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s", domain.ErrNotReversible, id)
	}

	return nil
}

// VoidByOperation voids every pending entry of an operation.
func (r *EntryRepository) VoidByOperation(ctx context.Context, tx usecase.Transaction, operationID string, at time.Time) (int64, error) {
	tag, err := pgxTx(tx).PgxTx().Exec(ctx, `
		UPDATE ledger_entries
		SET status = $1
		WHERE operation_id = $2 AND status = $3`,
		string(domain.EntryStatusVoided),
		operationID,
		string(domain.EntryStatusPending),
	)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

// ListByAccount retrieves an account's entries, optionally filtered
// by status, newest first.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, statuses []domain.EntryStatus, limit, offset int) ([]*domain.Entry, error) {
	filter := make([]string, 0, len(statuses))
	for _, s := range statuses {
		filter = append(filter, string(s))
	}

	var (
		rows pgx.Rows
		err  error
	)

	if len(filter) == 0 {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM ledger_entries
			WHERE account_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2 OFFSET $3`,
			accountID, limit, offset,
		)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM ledger_entries
			WHERE account_id = $1 AND status = ANY($2)
			ORDER BY created_at DESC, id DESC
			LIMIT $3 OFFSET $4`,
			accountID, filter, limit, offset,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByOperation retrieves the sibling entries of one operation.
func (r *EntryRepository) ListByOperation(ctx context.Context, operationID string) ([]*domain.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE operation_id = $1
		ORDER BY id`,
		operationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Finalized entry statuses that count toward balances. Reversed
// entries stay counted; their reversal group nets them out.
var countedStatuses = []string{
	string(domain.EntryStatusPosted),
	string(domain.EntryStatusReversed),
}

// SumPostedByAccount aggregates the finalized credit and debit totals
// of one account.
func (r *EntryRepository) SumPostedByAccount(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0)
		FROM ledger_entries
		WHERE account_id = $1 AND status = ANY($2)`,
		accountID, countedStatuses,
	)

	return scanSums(row)
}

// SumPostedByUser aggregates the finalized credit and debit totals
// across every entry tagged with the user.
func (r *EntryRepository) SumPostedByUser(ctx context.Context, userID string) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0)
		FROM ledger_entries
		WHERE user_id = $1 AND status = ANY($2)`,
		userID, countedStatuses,
	)

	return scanSums(row)
}

// SumPendingByUser totals the user's parked debits: funds attached to
// held movements.
func (r *EntryRepository) SumPendingByUser(ctx context.Context, userID string) (decimal.Decimal, error) {
	var n pgtype.Numeric

	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_entries
		WHERE user_id = $1 AND status = $2 AND direction = 'debit'`,
		userID, string(domain.EntryStatusPending),
	).Scan(&n)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(n), nil
}

// SumAllPosted aggregates the global finalized credit and debit totals.
func (r *EntryRepository) SumAllPosted(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE direction = 'credit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE direction = 'debit'), 0)
		FROM ledger_entries
		WHERE status = ANY($1)`,
		countedStatuses,
	)

	return scanSums(row)
}

// UnbalancedOperations finds two-sided operation groups whose
// finalized entries do not net to zero. Deposits are one-sided on
// purpose and are excluded.
func (r *EntryRepository) UnbalancedOperations(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.operation_id
		FROM ledger_entries e
		JOIN operations o ON o.id = e.operation_id
		WHERE o.type <> 'deposit' AND e.status = ANY($1)
		GROUP BY e.operation_id
		HAVING SUM(CASE WHEN e.direction = 'credit' THEN e.amount ELSE -e.amount END) <> 0
		LIMIT $2`,
		countedStatuses, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanEntries(rows pgx.Rows) ([]*domain.Entry, error) {
	var entries []*domain.Entry

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*domain.Entry, error) {
	var (
		entry      domain.Entry
		direction  string
		status     string
		amount     pgtype.Numeric
		reversalOf pgtype.Text
		createdAt  pgtype.Timestamptz
		postedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.ID,
		&entry.AccountID,
		&entry.UserID,
		&entry.OperationID,
		&direction,
		&amount,
		&status,
		&entry.SourceTag,
		&reversalOf,
		&createdAt,
		&postedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}

		return nil, err
	}

	entry.Direction = domain.Direction(direction)
	entry.Status = domain.EntryStatus(status)
	entry.Amount = numericToDecimal(amount)
	entry.ReversalOf = textToStringPtr(reversalOf)
	entry.CreatedAt = createdAt.Time
	entry.PostedAt = pgTimestamptzToTimePtr(postedAt)

	return &entry, nil
}

func scanSums(row pgx.Row) (decimal.Decimal, decimal.Decimal, error) {
	var credits, debits pgtype.Numeric

	if err := row.Scan(&credits, &debits); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return numericToDecimal(credits), numericToDecimal(debits), nil
}
