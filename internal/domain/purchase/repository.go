package purchase

import (
	"context"
)

// PurchaseRepository 購入レコードリポジトリインターフェース
type PurchaseRepository interface {
	// FindByPurchaseID 購入IDで購入レコードを取得
	FindByPurchaseID(ctx context.Context, purchaseID string) (*Purchase, error)

	// Save 購入レコードを保存（upsert、created_atは初回値を維持する）
	Save(ctx context.Context, purchase *Purchase) error

	// HasVerifiedPurchase ユーザーが検証済み購入を持つかどうかを返す
	HasVerifiedPurchase(ctx context.Context, userID string) (bool, error)
}
