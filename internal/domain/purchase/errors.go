package purchase

import "errors"

var (
	// ErrPurchaseNotFound 購入レコードが見つからないエラー
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrAlreadyProcessed 購入が既に処理済みエラー
	ErrAlreadyProcessed = errors.New("purchase already processed")
	// ErrReceiptInvalid レシート検証失敗エラー
	ErrReceiptInvalid = errors.New("receipt verification failed")
	// ErrReceiptMissing レシートデータ欠落エラー
	ErrReceiptMissing = errors.New("receipt data missing")
	// ErrUnsupportedPlatform サポート外プラットフォームエラー
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	// ErrInvalidPurchaseID 購入IDが無効エラー
	ErrInvalidPurchaseID = errors.New("invalid purchase id")
	// ErrInvalidUserID ユーザーIDが無効エラー
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidBundleID バンドルIDが無効エラー
	ErrInvalidBundleID = errors.New("invalid bundle id")
	// ErrInvalidStatus ステータスが無効エラー
	ErrInvalidStatus = errors.New("invalid purchase status")
	// ErrInvalidAmount 金額が無効エラー
	ErrInvalidAmount = errors.New("invalid amount")
)
