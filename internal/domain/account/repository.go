package account

import (
	"context"
)

// AccountRepository 口座リポジトリインターフェース
type AccountRepository interface {
	// FindByUserID ユーザーIDで口座を取得
	FindByUserID(ctx context.Context, userID string) (*Account, error)

	// Create 新しい口座を作成
	Create(ctx context.Context, account *Account) error

	// Save 口座を保存（更新、楽観的ロック対応）
	// バージョンが一致しない場合はErrVersionConflictを返す
	Save(ctx context.Context, account *Account) error

	// FindActiveSubscriberIDs サブスクリプションが有効なユーザーID一覧を取得
	FindActiveSubscriberIDs(ctx context.Context) ([]string, error)
}
