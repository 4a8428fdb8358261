package admin

// AdjustBalanceRequest 管理者による残高調整リクエスト
type AdjustBalanceRequest struct {
	AdminID      string
	TargetUserID string
	Amount       int64 // 符号付き（正: 加算、負: 減算）、0は不可
	Reason       string
}

// AdjustBalanceResponse 管理者による残高調整レスポンス
type AdjustBalanceResponse struct {
	TransactionID string
	BalanceAfter  int64
	Status        string
}
