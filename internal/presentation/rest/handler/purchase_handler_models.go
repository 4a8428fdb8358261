package handler

// VerifyPurchaseRequest 購入検証リクエスト
// @Description 購入検証リクエスト
type VerifyPurchaseRequest struct {
	Platform      string `json:"platform" example:"apple" enums:"apple,google,web"`
	BundleID      string `json:"bundle_id" example:"small"`
	PurchaseToken string `json:"purchase_token" example:"token123"`
	ReceiptData   string `json:"receipt_data,omitempty" example:"base64receipt"`
}

// VerifyPurchaseResponse 購入検証レスポンス
// @Description 購入検証レスポンス
type VerifyPurchaseResponse struct {
	TransactionID   string `json:"transaction_id" example:"txn_123"`
	Coins           string `json:"coins" example:"120"`
	BonusCoins      string `json:"bonus_coins" example:"20"`
	IsFirstPurchase bool   `json:"is_first_purchase" example:"true"`
	BalanceAfter    string `json:"balance_after" example:"620"`
	Status          string `json:"status" example:"completed"`
}
