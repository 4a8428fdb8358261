package catalog

import "errors"

var (
	// ErrUnknownBundle 未定義バンドルエラー
	ErrUnknownBundle = errors.New("unknown bundle")
	// ErrUnsupportedAction 未定義アクションエラー
	ErrUnsupportedAction = errors.New("unsupported action")
	// ErrUnknownPlan 未定義プランエラー
	ErrUnknownPlan = errors.New("unknown plan")
	// ErrInvalidCatalog カタログ定義が無効エラー
	ErrInvalidCatalog = errors.New("invalid catalog")
)
