package purchase

// VerifyAndCreditRequest 購入検証・付与リクエスト
type VerifyAndCreditRequest struct {
	UserID        string
	Platform      string
	BundleID      string
	PurchaseToken string
	ReceiptData   string // App Storeのみ使用
}

// VerifyAndCreditResponse 購入検証・付与レスポンス
type VerifyAndCreditResponse struct {
	TransactionID   string
	Coins           int64 // 付与された総コイン数（ボーナス込み）
	BonusCoins      int64
	IsFirstPurchase bool
	BalanceAfter    int64
	Status          string
}
