package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/transaction"
)

// TransactionRepository MySQL実装のTransactionRepository
type TransactionRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewTransactionRepository 新しいTransactionRepositoryを作成
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		tracer: otel.Tracer("transaction-repository"),
	}
}

// Save トランザクションを保存（追記のみ、更新は行わない）
func (r *TransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", t.TransactionID()),
		attribute.String("db.user_id", t.UserID()),
		attribute.String("db.transaction_type", t.TransactionType().String()),
		attribute.String("db.reason", t.Reason().String()),
		attribute.Int64("db.amount", t.Amount()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "coin_transactions"),
	)

	query := `
		INSERT INTO coin_transactions (
			transaction_id, user_id, transaction_type, reason,
			amount, balance_after, memo, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var metadataJSON []byte
	var err error
	if t.Metadata() != nil {
		metadataJSON, err = json.Marshal(t.Metadata())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	memo := t.Memo()
	var memoValue interface{}
	if memo != nil {
		memoValue = *memo
	}

	_, err = r.db.executor(ctx).ExecContext(ctx, query,
		t.TransactionID(),
		t.UserID(),
		t.TransactionType().String(),
		t.Reason().String(),
		t.Amount(),
		t.BalanceAfter(),
		memoValue,
		string(metadataJSON),
		t.CreatedAt(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "transaction saved")
	return nil
}

// FindByTransactionID トランザクションIDでトランザクションを取得
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByTransactionID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.transaction_id", transactionID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coin_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type, reason,
			amount, balance_after, memo, metadata, created_at
		FROM coin_transactions
		WHERE transaction_id = ?
	`

	row := r.db.executor(ctx).QueryRowContext(ctx, query, transactionID)
	t, err := r.scanTransaction(row.Scan)
	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "transaction not found")
		return nil, transaction.ErrTransactionNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("db.user_id", t.UserID()),
		attribute.Int64("db.amount", t.Amount()),
	)
	span.SetStatus(otelcodes.Ok, "transaction found")
	return t, nil
}

// FindByUserID ユーザーIDでトランザクション一覧を取得（ページネーション対応）
func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "TransactionRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.Int("db.limit", limit),
		attribute.Int("db.offset", offset),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coin_transactions"),
	)

	query := `
		SELECT
			transaction_id, user_id, transaction_type, reason,
			amount, balance_after, memo, metadata, created_at
		FROM coin_transactions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.executor(ctx).QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(transactions)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d transactions", len(transactions)))
	return transactions, nil
}

// scanTransaction 1行分のスキャン結果からエンティティを復元
func (r *TransactionRepository) scanTransaction(scan func(dest ...interface{}) error) (*transaction.Transaction, error) {
	var dbTransactionID, dbUserID, dbTransactionType, dbReason string
	var amount, balanceAfter int64
	var memo sql.NullString
	var metadataJSON sql.NullString
	var createdAt time.Time

	if err := scan(
		&dbTransactionID,
		&dbUserID,
		&dbTransactionType,
		&dbReason,
		&amount,
		&balanceAfter,
		&memo,
		&metadataJSON,
		&createdAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tt, err := transaction.NewTransactionType(dbTransactionType)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction type: %w", err)
	}

	reason, err := transaction.NewReason(dbReason)
	if err != nil {
		return nil, fmt.Errorf("invalid reason: %w", err)
	}

	var metadata map[string]interface{}
	if metadataJSON.Valid && metadataJSON.String != "" {
		if err := json.Unmarshal([]byte(metadataJSON.String), &metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	var memoPtr *string
	if memo.Valid {
		memoPtr = &memo.String
	}

	t, err := transaction.RestoreTransaction(
		dbTransactionID,
		dbUserID,
		tt,
		reason,
		amount,
		balanceAfter,
		memoPtr,
		metadata,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transaction entity: %w", err)
	}

	return t, nil
}
