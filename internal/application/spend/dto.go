package spend

// SpendRequest コイン消費リクエスト
type SpendRequest struct {
	UserID   string
	Action   string // "swipe_extra", "special_like", "super_like", "boost", "priority"
	Metadata map[string]interface{}
}

// SpendResponse コイン消費レスポンス
type SpendResponse struct {
	TransactionID string
	Cost          int64
	BalanceAfter  int64
	Status        string
}
