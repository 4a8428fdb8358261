package transaction

// Observer 新規トランザクション作成時に呼び出されるリアクティブフック
// コミット後に通知されるため、トランザクション自体を妨げてはならない
type Observer interface {
	// OnTransaction 新しいトランザクションを通知
	OnTransaction(txn *Transaction)
}
