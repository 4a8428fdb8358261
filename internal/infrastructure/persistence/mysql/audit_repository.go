package mysql

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/audit"
)

// AuditRepository MySQL実装のAuditRepository
type AuditRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewAuditRepository 新しいAuditRepositoryを作成
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{
		db:     db,
		tracer: otel.Tracer("audit-repository"),
	}
}

// SaveAdminAudit 管理者調整の監査レコードを保存
func (r *AuditRepository) SaveAdminAudit(ctx context.Context, a *audit.AdminAudit) error {
	ctx, span := r.tracer.Start(ctx, "AuditRepository.SaveAdminAudit")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.audit_id", a.AuditID()),
		attribute.String("db.admin_id", a.AdminID()),
		attribute.String("db.target_user_id", a.TargetUserID()),
		attribute.Int64("db.amount", a.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "admin_audit_logs"),
	)

	query := `
		INSERT INTO admin_audit_logs (
			audit_id, admin_id, target_user_id, amount, reason, transaction_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		a.AuditID(),
		a.AdminID(),
		a.TargetUserID(),
		a.Amount(),
		a.Reason(),
		a.TransactionID(),
		a.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save admin audit: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "admin audit saved")
	return nil
}

// SaveFraudFlag 不正検知フラグを保存
func (r *AuditRepository) SaveFraudFlag(ctx context.Context, f *audit.FraudFlag) error {
	ctx, span := r.tracer.Start(ctx, "AuditRepository.SaveFraudFlag")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.flag_id", f.FlagID()),
		attribute.String("db.user_id", f.UserID()),
		attribute.String("db.transaction_id", f.TransactionID()),
		attribute.Int64("db.amount", f.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "fraud_flags"),
	)

	query := `
		INSERT INTO fraud_flags (
			flag_id, user_id, transaction_id, amount, threshold, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		f.FlagID(),
		f.UserID(),
		f.TransactionID(),
		f.Amount(),
		f.Threshold(),
		f.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save fraud flag: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "fraud flag saved")
	return nil
}

// FindFraudFlagsByUserID ユーザーIDで不正検知フラグ一覧を取得（新しい順）
func (r *AuditRepository) FindFraudFlagsByUserID(ctx context.Context, userID string, limit, offset int) ([]*audit.FraudFlag, error) {
	ctx, span := r.tracer.Start(ctx, "AuditRepository.FindFraudFlagsByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "fraud_flags"),
	)

	query := `
		SELECT flag_id, user_id, transaction_id, amount, threshold, created_at
		FROM fraud_flags
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.executor(ctx).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query fraud flags: %w", err)
	}
	defer rows.Close()

	var flags []*audit.FraudFlag
	for rows.Next() {
		var flagID, dbUserID, transactionID string
		var amount, threshold int64
		var createdAt time.Time

		if err := rows.Scan(
			&flagID,
			&dbUserID,
			&transactionID,
			&amount,
			&threshold,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fraud flag: %w", err)
		}

		f, err := audit.RestoreFraudFlag(flagID, dbUserID, transactionID, amount, threshold, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct fraud flag entity: %w", err)
		}

		flags = append(flags, f)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate fraud flags: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(flags)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d fraud flags", len(flags)))
	return flags, nil
}
