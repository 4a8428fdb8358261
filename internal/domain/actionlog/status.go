package actionlog

import (
	"fmt"
)

// Status アクション試行の結果ステータスを表す値オブジェクト
type Status string

const (
	StatusSuccess Status = "success" // 消費成功
	StatusFailed  Status = "failed"  // 残高不足などによる失敗
)

// NewStatus 新しいStatusを作成
func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid action log status: %s", s)
	}
	return st, nil
}

// String 文字列表現を返す
func (s Status) String() string {
	return string(s)
}

// Valid 有効なステータスかどうかを返す
func (s Status) Valid() bool {
	return s == StatusSuccess || s == StatusFailed
}
