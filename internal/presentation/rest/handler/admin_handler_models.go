package handler

// AdjustBalanceRequest 残高調整リクエスト
// @Description 残高調整リクエスト
type AdjustBalanceRequest struct {
	Amount string `json:"amount" example:"-100"`
	Reason string `json:"reason" example:"サポート対応による返金"`
}

// AdjustBalanceResponse 残高調整レスポンス
// @Description 残高調整レスポンス
type AdjustBalanceResponse struct {
	TransactionID string `json:"transaction_id" example:"txn_123"`
	BalanceAfter  string `json:"balance_after" example:"400"`
	Status        string `json:"status" example:"completed"`
}

// ActivateSubscriptionRequest サブスクリプション有効化リクエスト
// @Description サブスクリプション有効化リクエスト
type ActivateSubscriptionRequest struct {
	PlanID string `json:"plan_id" example:"premium_monthly"`
}

// SubscriptionStatusResponse サブスクリプション状態レスポンス
// @Description サブスクリプション状態レスポンス
type SubscriptionStatusResponse struct {
	UserID string `json:"user_id" example:"user123"`
	Active bool   `json:"active" example:"true"`
}

// SweepResponse サブスクリプション付与バッチレスポンス
// @Description サブスクリプション付与バッチレスポンス
type SweepResponse struct {
	Processed int `json:"processed" example:"100"`
	Succeeded int `json:"succeeded" example:"98"`
	Failed    int `json:"failed" example:"2"`
}
