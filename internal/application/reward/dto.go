package reward

// ClaimDailyRewardRequest デイリー報酬受け取りリクエスト
type ClaimDailyRewardRequest struct {
	UserID     string
	RewardType string // "daily_login" など
	Coins      *int64 // 指定がなければカタログの既定値を使用
}

// ClaimDailyRewardResponse デイリー報酬受け取りレスポンス
type ClaimDailyRewardResponse struct {
	TransactionID string
	Coins         int64
	BalanceAfter  int64
	Status        string
}
