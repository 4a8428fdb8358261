package transaction

import "errors"

var (
	// ErrTransactionNotFound トランザクションが見つからないエラー
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrInvalidTransaction 無効なトランザクションエラー
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidTransactionID トランザクションIDが無効エラー
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrInvalidUserID ユーザーIDが無効エラー
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidAmount 金額が無効エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooLarge 金額が大きすぎるエラー
	ErrAmountTooLarge = errors.New("amount too large")
	// ErrBalanceOutOfRange 残高が範囲外エラー
	ErrBalanceOutOfRange = errors.New("balance out of range")
	// ErrInvalidReason 理由コードが無効エラー
	ErrInvalidReason = errors.New("invalid reason")
)
