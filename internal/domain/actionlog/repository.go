package actionlog

import (
	"context"
)

// ActionLogRepository アクションログリポジトリインターフェース
type ActionLogRepository interface {
	// Append エントリを追記
	Append(ctx context.Context, entry *Entry) error

	// FindByUserID ユーザーIDでエントリ一覧を取得（新しい順）
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*Entry, error)
}
