package mysql

import (
	"context"
	"database/sql"
)

// txKey コンテキストに格納するトランザクションのキー
type txKey struct{}

// txFromContext コンテキストからトランザクションを取り出す
func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// TransactionManager トランザクション管理を提供
// トランザクションをコンテキストに格納し、配下のリポジトリ呼び出しを
// 同一のアトミック単位に参加させる
type TransactionManager struct {
	db *DB
}

// NewTransactionManager 新しいトランザクションマネージャーを作成
func NewTransactionManager(db *DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction トランザクション内で関数を実行
// 既にトランザクション内の場合は新規に開始せず、そのまま参加する
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}
