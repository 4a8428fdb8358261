package actionlog

import "errors"

var (
	// ErrInvalidEntryID エントリIDが無効エラー
	ErrInvalidEntryID = errors.New("invalid entry id")
	// ErrInvalidUserID ユーザーIDが無効エラー
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidAction アクション名が無効エラー
	ErrInvalidAction = errors.New("invalid action")
	// ErrInvalidStatus ステータスが無効エラー
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidCost コストが無効エラー
	ErrInvalidCost = errors.New("invalid cost")
)
