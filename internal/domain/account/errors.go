package account

import "errors"

var (
	// ErrInsufficientBalance 残高不足エラー
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount 無効な金額エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooLarge 金額が大きすぎるエラー
	ErrAmountTooLarge = errors.New("amount too large")
	// ErrBalanceOutOfRange 残高が範囲外エラー
	ErrBalanceOutOfRange = errors.New("balance out of range")
	// ErrInvalidUserID ユーザーIDが無効エラー
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrAccountNotFound 口座が見つからないエラー
	ErrAccountNotFound = errors.New("account not found")
	// ErrRewardAlreadyClaimed 報酬が付与済みエラー
	ErrRewardAlreadyClaimed = errors.New("reward already claimed")
	// ErrRewardInvalidType 報酬タイプが無効エラー
	ErrRewardInvalidType = errors.New("invalid reward type")
	// ErrSubscriptionInactive サブスクリプションが無効エラー
	ErrSubscriptionInactive = errors.New("subscription inactive")
	// ErrVersionConflict 楽観的ロックの競合エラー（アトミック単位が透過的にリトライする）
	ErrVersionConflict = errors.New("version conflict")
)
