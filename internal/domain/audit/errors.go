package audit

import "errors"

var (
	// ErrInvalidAuditID 監査IDが無効エラー
	ErrInvalidAuditID = errors.New("invalid audit id")
	// ErrInvalidFlagID フラグIDが無効エラー
	ErrInvalidFlagID = errors.New("invalid flag id")
	// ErrInvalidAdminID 管理者IDが無効エラー
	ErrInvalidAdminID = errors.New("invalid admin id")
	// ErrInvalidUserID ユーザーIDが無効エラー
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidAmount 金額が無効エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidTransactionID トランザクションIDが無効エラー
	ErrInvalidTransactionID = errors.New("invalid transaction id")
)
