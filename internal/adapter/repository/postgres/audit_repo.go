package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/iho/coinledger/internal/domain"
	"github.com/iho/coinledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coinledger/internal/usecase"
)

// AuditRepository implements audit log persistence.
type AuditRepository struct {
	db generated.DBTX
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts an audit log entry inside the caller's transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	before, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}
	after, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	return queries.CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           log.ID,
		UserID:       log.UserID,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		RequestID:    log.RequestID,
		BeforeState:  before,
		AfterState:   after,
		Status:       log.Status,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})
}

// List retrieves audit logs with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT id, user_id, action, resource_type, resource_id, request_id,
		before_state, after_state, status, error_message, created_at
		FROM audit_logs WHERE 1=1`)

	where := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		query.WriteString(" AND " + column + " = $" + strconv.Itoa(len(args)))
	}
	where("user_id", filter.UserID)
	where("action", filter.Action)
	where("resource_type", filter.ResourceType)
	where("resource_id", filter.ResourceID)

	query.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	rows, err := r.db.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var beforeStateJSON, afterStateJSON []byte

		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&beforeStateJSON,
			&afterStateJSON,
			&log.Status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if beforeStateJSON != nil {
			_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
		}
		if afterStateJSON != nil {
			_ = json.Unmarshal(afterStateJSON, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}
