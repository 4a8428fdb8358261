package purchase

import (
	"context"
)

// VerifyRequest ストア検証リクエスト
type VerifyRequest struct {
	UserID        string
	Platform      Platform
	BundleID      string
	PurchaseToken string // Google Play / Web決済の購入トークン
	ReceiptData   string // App Storeのレシートデータ
	Coins         int64  // バンドル定義上のコイン数
	Price         int64
	Currency      string
}

// VerifyResult ストア検証結果
type VerifyResult struct {
	PurchaseID string // 冪等性キーとして使用する購入ID
	Coins      int64
	Price      int64
	Currency   string
}

// Verifier ストア購入検証インターフェース
// 台帳のアトミック単位の外側で呼び出される（外部通信を含むため）
type Verifier interface {
	// Verify 外部ストアAPIに問い合わせて購入の正当性を検証する
	// 検証失敗時はErrReceiptInvalid、レシート欠落時はErrReceiptMissingを返す
	Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error)
}

// VerifierResolver プラットフォームごとのVerifierを解決するインターフェース
type VerifierResolver interface {
	// Resolve プラットフォームに対応するVerifierを返す
	// 未対応のプラットフォームの場合はErrUnsupportedPlatformを返す
	Resolve(platform Platform) (Verifier, error)
}
