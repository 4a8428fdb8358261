package handler

// TransactionItem トランザクション履歴アイテム
// @Description トランザクション履歴アイテム
type TransactionItem struct {
	TransactionID   string `json:"transaction_id" example:"txn_123"`
	TransactionType string `json:"transaction_type" example:"debit"`
	Reason          string `json:"reason" example:"super_like"`
	Amount          string `json:"amount" example:"50"`
	BalanceAfter    string `json:"balance_after" example:"450"`
	Memo            string `json:"memo,omitempty" example:"daily_login"`
	CreatedAt       string `json:"created_at" example:"2024-01-01T12:00:00+09:00"`
}

// TransactionHistoryResponse トランザクション履歴レスポンス
// @Description トランザクション履歴レスポンス
type TransactionHistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total" example:"2"`
	Limit        int               `json:"limit" example:"50"`
	Offset       int               `json:"offset" example:"0"`
}
