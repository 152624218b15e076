package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finanza/ledger/internal/domain"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Create inserts a new audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	var detail []byte
	if log.Detail != nil {
		var err error
		detail, err = json.Marshal(log.Detail)
		if err != nil {
			return err
		}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, resource_type, resource_id, request_id, detail, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID,
		log.ActorUserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		detail,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List queries audit logs with optional filters, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, actor_user_id, action, resource_type, resource_id, request_id, detail, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1`

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ActorUserID != "" {
		query += ` AND actor_user_id = ` + arg(filter.ActorUserID)
	}
	if filter.Action != "" {
		query += ` AND action = ` + arg(filter.Action)
	}
	if filter.ResourceType != "" {
		query += ` AND resource_type = ` + arg(filter.ResourceType)
	}
	if filter.ResourceID != "" {
		query += ` AND resource_id = ` + arg(filter.ResourceID)
	}
	if filter.StartDate != nil {
		query += ` AND created_at >= ` + arg(timeToPgTimestamptz(*filter.StartDate))
	}
	if filter.EndDate != nil {
		query += ` AND created_at <= ` + arg(timeToPgTimestamptz(*filter.EndDate))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query += ` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog

	for rows.Next() {
		var (
			log       domain.AuditLog
			detail    []byte
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&log.ID,
			&log.ActorUserID,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&detail,
			&log.Status,
			&log.ErrorMessage,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		if detail != nil {
			_ = json.Unmarshal(detail, &log.Detail)
		}
		log.CreatedAt = createdAt.Time

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
