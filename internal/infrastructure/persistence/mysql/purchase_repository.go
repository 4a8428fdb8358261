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

	"coin-server/internal/domain/purchase"
)

// PurchaseRepository MySQL実装のPurchaseRepository
type PurchaseRepository struct {
	db     *DB
	tracer trace.Tracer
}

// NewPurchaseRepository 新しいPurchaseRepositoryを作成
func NewPurchaseRepository(db *DB) *PurchaseRepository {
	return &PurchaseRepository{
		db:     db,
		tracer: otel.Tracer("purchase-repository"),
	}
}

// FindByPurchaseID 購入IDで購入レコードを取得
func (r *PurchaseRepository) FindByPurchaseID(ctx context.Context, purchaseID string) (*purchase.Purchase, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.FindByPurchaseID")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.purchase_id", purchaseID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coin_purchases"),
	)

	query := `
		SELECT purchase_id, user_id, platform, bundle_id, status,
			total_coins, bonus_coins, price, currency, created_at, verified_at
		FROM coin_purchases
		WHERE purchase_id = ?
	`

	var dbPurchaseID, dbUserID, dbPlatform, dbBundleID, dbStatus string
	var totalCoins, bonusCoins, price int64
	var currency string
	var createdAt time.Time
	var verifiedAt sql.NullTime

	err := r.db.executor(ctx).QueryRowContext(ctx, query, purchaseID).Scan(
		&dbPurchaseID,
		&dbUserID,
		&dbPlatform,
		&dbBundleID,
		&dbStatus,
		&totalCoins,
		&bonusCoins,
		&price,
		&currency,
		&createdAt,
		&verifiedAt,
	)

	if err == sql.ErrNoRows {
		span.SetStatus(otelcodes.Ok, "purchase not found")
		return nil, purchase.ErrPurchaseNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	span.SetAttributes(
		attribute.String("db.user_id", dbUserID),
		attribute.String("db.status", dbStatus),
	)
	span.SetStatus(otelcodes.Ok, "purchase found")

	platform, err := purchase.NewPlatform(dbPlatform)
	if err != nil {
		return nil, fmt.Errorf("invalid platform: %w", err)
	}

	status, err := purchase.NewStatus(dbStatus)
	if err != nil {
		return nil, fmt.Errorf("invalid status: %w", err)
	}

	var verifiedAtPtr *time.Time
	if verifiedAt.Valid {
		t := verifiedAt.Time
		verifiedAtPtr = &t
	}

	p, err := purchase.RestorePurchase(
		dbPurchaseID,
		dbUserID,
		platform,
		dbBundleID,
		status,
		totalCoins,
		bonusCoins,
		price,
		currency,
		createdAt,
		verifiedAtPtr,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct purchase entity: %w", err)
	}

	return p, nil
}

// Save 購入レコードを保存（upsert）
// 既存行のcreated_atは維持され、購入が再日付されることはない
func (r *PurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.purchase_id", p.PurchaseID()),
		attribute.String("db.user_id", p.UserID()),
		attribute.String("db.status", p.Status().String()),
		attribute.String("db.operation", "UPSERT"),
		attribute.String("db.table", "coin_purchases"),
	)

	query := `
		INSERT INTO coin_purchases (
			purchase_id, user_id, platform, bundle_id, status,
			total_coins, bonus_coins, price, currency, created_at, verified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			total_coins = VALUES(total_coins),
			bonus_coins = VALUES(bonus_coins),
			verified_at = VALUES(verified_at),
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := r.db.executor(ctx).ExecContext(ctx, query,
		p.PurchaseID(),
		p.UserID(),
		p.Platform().String(),
		p.BundleID(),
		p.Status().String(),
		p.TotalCoins(),
		p.BonusCoins(),
		p.Price(),
		p.Currency(),
		p.CreatedAt(),
		nullTime(p.VerifiedAt()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return fmt.Errorf("failed to save purchase: %w", err)
	}

	span.SetStatus(otelcodes.Ok, "purchase saved")
	return nil
}

// HasVerifiedPurchase ユーザーが検証済み購入を持つかどうかを返す
func (r *PurchaseRepository) HasVerifiedPurchase(ctx context.Context, userID string) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "PurchaseRepository.HasVerifiedPurchase")
	defer span.End()

	span.SetAttributes(
		attribute.String("db.user_id", userID),
		attribute.String("db.operation", "SELECT"),
		attribute.String("db.table", "coin_purchases"),
	)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM coin_purchases
			WHERE user_id = ? AND status = 'verified'
		)
	`

	var exists bool
	err := r.db.executor(ctx).QueryRowContext(ctx, query, userID).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return false, fmt.Errorf("failed to check verified purchase: %w", err)
	}

	span.SetAttributes(attribute.Bool("db.exists", exists))
	span.SetStatus(otelcodes.Ok, "verified purchase checked")
	return exists, nil
}
