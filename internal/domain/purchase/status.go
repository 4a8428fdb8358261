package purchase

import (
	"fmt"
)

// Status 購入レコードのステータスを表す値オブジェクト
type Status string

const (
	StatusPending  Status = "pending"  // 検証前
	StatusVerified Status = "verified" // 検証済み・コイン付与済み
)

// NewStatus 新しいStatusを作成
func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid purchase status: %s", s)
	}
	return st, nil
}

// String 文字列表現を返す
func (s Status) String() string {
	return string(s)
}

// Valid 有効なステータスかどうかを返す
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusVerified
}
