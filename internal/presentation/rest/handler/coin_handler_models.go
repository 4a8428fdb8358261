package handler

// BalanceResponse 残高レスポンス
// @Description 残高レスポンス
type BalanceResponse struct {
	UserID      string `json:"user_id" example:"user123"`
	CoinBalance string `json:"coin_balance" example:"500"`
}

// SpendRequest コイン消費リクエスト
// @Description コイン消費リクエスト
type SpendRequest struct {
	Action   string                 `json:"action" example:"super_like" enums:"swipe_extra,special_like,super_like,boost,priority"`
	Metadata map[string]interface{} `json:"metadata"`
}

// SpendResponse コイン消費レスポンス
// @Description コイン消費レスポンス
type SpendResponse struct {
	TransactionID string `json:"transaction_id" example:"txn_456"`
	Cost          string `json:"cost" example:"50"`
	BalanceAfter  string `json:"balance_after" example:"450"`
	Status        string `json:"status" example:"completed"`
}

// ClaimRewardRequest 報酬受け取りリクエスト
// @Description 報酬受け取りリクエスト
type ClaimRewardRequest struct {
	RewardType string `json:"reward_type" example:"daily_login"`
	Coins      string `json:"coins,omitempty" example:"10"`
}

// ClaimRewardResponse 報酬受け取りレスポンス
// @Description 報酬受け取りレスポンス
type ClaimRewardResponse struct {
	TransactionID string `json:"transaction_id" example:"txn_789"`
	Coins         string `json:"coins" example:"10"`
	BalanceAfter  string `json:"balance_after" example:"460"`
	Status        string `json:"status" example:"completed"`
}
