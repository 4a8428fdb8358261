package transaction

import (
	"context"
)

// TransactionManager ストレージレベルのアトミック単位を提供するインターフェース
// fnに渡されるコンテキストを使うリポジトリ呼び出しは同一のアトミック単位に参加する
type TransactionManager interface {
	// WithTransaction トランザクション内で関数を実行
	// fnがエラーを返した場合はロールバック、それ以外はコミットする
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
