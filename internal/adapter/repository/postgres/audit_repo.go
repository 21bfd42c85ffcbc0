package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annuu1/finance-partner/internal/domain"
	"github.com/annuu1/finance-partner/internal/usecase"
)

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const createAuditLog = `
INSERT INTO audit_logs (id, actor_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// Create writes an audit record outside any transaction. Failures here must
// not fail the audited operation; callers log and continue.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.create(ctx, r.pool, log)
}

// CreateTx writes an audit record inside the caller's transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	return r.create(ctx, txQuerier(tx), log)
}

func (r *AuditRepository) create(ctx context.Context, q querier, log *domain.AuditLog) error {
	before, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}

	after, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	_, err = q.Exec(ctx, createAuditLog,
		log.ID,
		log.ActorID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		before,
		after,
		log.Status,
		log.ErrorMessage,
		timeToPgTimestamptz(log.CreatedAt),
	)

	return err
}

// List returns audit logs matching the filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		conds []string
		args  []any
	)

	addCond := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActorID != "" {
		addCond("actor_id = $%d", filter.ActorID)
	}
	if filter.Action != "" {
		addCond("action = $%d", filter.Action)
	}
	if filter.ResourceType != "" {
		addCond("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		addCond("resource_id = $%d", filter.ResourceID)
	}
	if filter.StartDate != nil {
		addCond("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCond("created_at <= $%d", *filter.EndDate)
	}

	query := `SELECT id, actor_id, action, resource_type, resource_id, before_state, after_state, status, error_message, created_at FROM audit_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	args = append(args, int32(filter.Limit))
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, int32(filter.Offset))
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var (
		l         domain.AuditLog
		before    []byte
		after     []byte
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(&l.ID, &l.ActorID, &l.Action, &l.ResourceType, &l.ResourceID,
		&before, &after, &l.Status, &l.ErrorMessage, &createdAt)
	if err != nil {
		return nil, err
	}

	if len(before) > 0 {
		if err := json.Unmarshal(before, &l.BeforeState); err != nil {
			return nil, fmt.Errorf("unmarshal before_state: %w", err)
		}
	}
	if len(after) > 0 {
		if err := json.Unmarshal(after, &l.AfterState); err != nil {
			return nil, fmt.Errorf("unmarshal after_state: %w", err)
		}
	}

	l.CreatedAt = createdAt.Time

	return &l, nil
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal audit state: %w", err)
	}

	return data, nil
}
