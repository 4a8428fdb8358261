package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/actionlog"
)

// ActionLogRepository MySQL実装のActionLogRepository
type ActionLogRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewActionLogRepository 新しいActionLogRepositoryを作成
func NewActionLogRepository(db *DB) *ActionLogRepository {
	return &ActionLogRepository{
		db:     db,
		tracer: otel.Tracer("action-log-repository"),
	}
}

// Append エントリを追記
func (r *ActionLogRepository) Append(ctx context.Context, e *actionlog.Entry) error {
	ctx, span := r.tracer.Start(ctx, "ActionLogRepository.Append")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.entry_id", e.EntryID()),
		attribute.String("db.user_id", e.UserID()),
		attribute.String("db.action", e.Action()),
		attribute.String("db.status", e.Status().String()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "action_logs"),
	)

	query := `
		INSERT INTO action_logs (
			entry_id, user_id, action, status, cost, balance_after, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	balanceAfter := e.BalanceAfter()
	var balanceAfterValue interface{}
	if balanceAfter != nil {
		balanceAfterValue = *balanceAfter
	}

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		e.EntryID(),
		e.UserID(),
		e.Action(),
		e.Status().String(),
		e.Cost(),
		balanceAfterValue,
		e.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to append action log: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "action log appended")
	return nil
}

// FindByUserID ユーザーIDでエントリ一覧を取得（新しい順）
func (r *ActionLogRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*actionlog.Entry, error) {
	ctx, span := r.tracer.Start(ctx, "ActionLogRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "action_logs"),
	)

	query := `
		SELECT entry_id, user_id, action, status, cost, balance_after, created_at
		FROM action_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.executor(ctx).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query action logs: %w", err)
	}
	defer rows.Close()

	var entries []*actionlog.Entry
	for rows.Next() {
		var entryID, dbUserID, action, dbStatus string
		var cost int64
		var balanceAfter sql.NullInt64
		var createdAt time.Time

		if err := rows.Scan(
			&entryID,
			&dbUserID,
			&action,
			&dbStatus,
			&cost,
			&balanceAfter,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan action log: %w", err)
		}

		status, err := actionlog.NewStatus(dbStatus)
		if err != nil {
			return nil, fmt.Errorf("invalid status: %w", err)
		}

		var balanceAfterPtr *int64
		if balanceAfter.Valid {
			v := balanceAfter.Int64
			balanceAfterPtr = &v
		}

		e, err := actionlog.RestoreEntry(entryID, dbUserID, action, status, cost, balanceAfterPtr, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct action log entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate action logs: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(entries)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d action logs", len(entries)))
	return entries, nil
}
