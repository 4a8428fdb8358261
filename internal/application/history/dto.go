package history

import (
	"coin-server/internal/domain/transaction"
)

// GetBalanceRequest 残高取得リクエスト
type GetBalanceRequest struct {
	UserID string
}

// GetBalanceResponse 残高取得レスポンス
type GetBalanceResponse struct {
	UserID      string
	CoinBalance int64
}

// GetTransactionHistoryRequest トランザクション履歴取得リクエスト
type GetTransactionHistoryRequest struct {
	UserID          string
	Limit           int
	Offset          int
	TransactionType string // "credit" / "debit"、空の場合は全件
	Reason          string // 理由コード、空の場合は全件
}

// GetTransactionHistoryResponse トランザクション履歴取得レスポンス
type GetTransactionHistoryResponse struct {
	Transactions []*transaction.Transaction
	Total        int
	Limit        int
	Offset       int
}
