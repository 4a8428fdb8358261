package purchase

import (
	"fmt"
)

// Platform 購入プラットフォームを表す値オブジェクト
type Platform string

const (
	PlatformApple  Platform = "apple"  // App Store
	PlatformGoogle Platform = "google" // Google Play
	PlatformWeb    Platform = "web"    // Web決済
)

// NewPlatform 新しいPlatformを作成
func NewPlatform(s string) (Platform, error) {
	p := Platform(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, s)
	}
	return p, nil
}

// String 文字列表現を返す
func (p Platform) String() string {
	return string(p)
}

// Valid 有効なプラットフォームかどうかを返す
func (p Platform) Valid() bool {
	switch p {
	case PlatformApple, PlatformGoogle, PlatformWeb:
		return true
	default:
		return false
	}
}
