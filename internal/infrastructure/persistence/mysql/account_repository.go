package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
)

const mysqlErrDuplicateEntry = 1062

// AccountRepository MySQL実装のAccountRepository
type AccountRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewAccountRepository 新しいAccountRepositoryを作成
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{
		db:     db,
		tracer: otel.Tracer("account-repository"),
	}
}

// FindByUserID ユーザーIDでアカウントを取得
func (r *AccountRepository) FindByUserID(ctx context.Context, userID string) (*account.Account, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.FindByUserID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "accounts"),
	)

	query := `
		SELECT user_id, coin_balance, reward_log,
			subscription_active, last_daily_credit_at, last_boost_at, boost_quota,
			version
		FROM accounts
		WHERE user_id = ?
	`

	var dbUserID string
	var coinBalance int64
	var rewardLogJSON sql.NullString
	var subscriptionActive bool
	var lastDailyCreditAt, lastBoostAt sql.NullTime
	var boostQuota int64
	var version int

	err := r.db.executor(ctx).QueryRowContext(ctx, query, userID).Scan(
		&dbUserID,
		&coinBalance,
		&rewardLogJSON,
		&subscriptionActive,
		&lastDailyCreditAt,
		&lastBoostAt,
		&boostQuota,
		&version,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "account not found")
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("db.coin_balance", coinBalance),
		attribute.Int("db.version", version),
	)
	span.SetStatus(otelcodes.Ok, "account found")

	rewardLog := make(map[string]time.Time)
	if rewardLogJSON.Valid && rewardLogJSON.String != "" {
		if err := json.Unmarshal([]byte(rewardLogJSON.String), &rewardLog); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reward log: %w", err)
		}
	}

	sub := account.Subscription{
		Active:     subscriptionActive,
		BoostQuota: boostQuota,
	}
	if lastDailyCreditAt.Valid {
		t := lastDailyCreditAt.Time
		sub.LastDailyCreditAt = &t
	}
	if lastBoostAt.Valid {
		t := lastBoostAt.Time
		sub.LastBoostAt = &t
	}

	acc, err := account.NewAccount(dbUserID, coinBalance, rewardLog, sub, version)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account entity: %w", err)
	}

	return acc, nil
}

// Create 新しいアカウントを作成
// 同一ユーザーIDの同時作成が競合した場合はErrVersionConflictを返し、
// 呼び出し側の再試行で既存行の読み取りからやり直させる
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", acc.UserID()),
		attribute.Int64("db.coin_balance", acc.CoinBalance()),
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.table", "accounts"),
	)

	rewardLogJSON, err := json.Marshal(acc.RewardLog())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to marshal reward log: %w", err)
	}

	sub := acc.Subscription()

	query := `
		INSERT INTO accounts (
			user_id, coin_balance, reward_log,
			subscription_active, last_daily_credit_at, last_boost_at, boost_quota,
			version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.executor(ctx).ExecContext(ctx, query,
		acc.UserID(),
		acc.CoinBalance(),
		string(rewardLogJSON),
		sub.Active,
		nullTime(sub.LastDailyCreditAt),
		nullTime(sub.LastBoostAt),
		sub.BoostQuota,
		acc.Version(),
	)

	if err != nil {
		var mysqlErr *gomysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry {
			span.SetStatus(otelcodes.Ok, "account already exists")
			return account.ErrVersionConflict
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to create account: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "account created")
	return nil
}

// Save アカウントを保存（楽観的ロック）
// バージョンの加算はこのUPDATEが行うため、エンティティ側はバージョンに触れない
func (r *AccountRepository) Save(ctx context.Context, acc *account.Account) error {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", acc.UserID()),
		attribute.Int64("db.coin_balance", acc.CoinBalance()),
		attribute.Int("db.version", acc.Version()),
		attribute.String("db.operation", "UPDATE"),
		attribute.String("db.table", "accounts"),
	)

	rewardLogJSON, err := json.Marshal(acc.RewardLog())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to marshal reward log: %w", err)
	}

	sub := acc.Subscription()

	query := `
		UPDATE accounts
		SET coin_balance = ?, reward_log = ?,
			subscription_active = ?, last_daily_credit_at = ?, last_boost_at = ?, boost_quota = ?,
			version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?
	`

	result, err := r.db.executor(ctx).ExecContext(ctx, query,
		acc.CoinBalance(),
		string(rewardLogJSON),
		sub.Active,
		nullTime(sub.LastDailyCreditAt),
		nullTime(sub.LastBoostAt),
		sub.BoostQuota,
		acc.UserID(),
		acc.Version(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save account: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		span.SetStatus(otelcodes.Ok, "version conflict")
		return account.ErrVersionConflict
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
	span.SetStatus(otelcodes.Ok, "account saved")
	return nil
}

// FindActiveSubscriberIDs サブスクリプションが有効なユーザーID一覧を取得
func (r *AccountRepository) FindActiveSubscriberIDs(ctx context.Context) ([]string, error) {
	ctx, span := r.tracer.Start(ctx, "AccountRepository.FindActiveSubscriberIDs")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "accounts"),
	)

	query := `
		SELECT user_id
		FROM accounts
		WHERE subscription_active = TRUE
		ORDER BY user_id
	`

	rows, err := r.db.executor(ctx).QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to query active subscribers: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to iterate active subscribers: %w", err)
	}

	span.SetAttributes(attribute.Int("db.result_count", len(userIDs)))
	span.SetStatus(otelcodes.Ok, fmt.Sprintf("found %d active subscribers", len(userIDs)))
	return userIDs, nil
}

// nullTime *time.Timeをsql.NullTimeに変換
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
