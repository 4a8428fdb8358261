package subscription

// SweepResponse サブスクリプション付与バッチの結果
type SweepResponse struct {
	Processed int // 対象アカウント数
	Succeeded int
	Failed    int
}

// ActivateRequest サブスクリプション有効化リクエスト
type ActivateRequest struct {
	UserID string
	PlanID string
}

// DeactivateRequest サブスクリプション無効化リクエスト
type DeactivateRequest struct {
	UserID string
}
