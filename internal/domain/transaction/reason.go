package transaction

import (
	"fmt"
)

// Reason トランザクションの理由コードを表す値オブジェクト
type Reason string

const (
	ReasonPurchase     Reason = "purchase"     // コイン購入
	ReasonBonus        Reason = "bonus"        // ボーナス・報酬
	ReasonSubscription Reason = "subscription" // サブスクリプション付与
	ReasonSwipe        Reason = "swipe"        // スワイプ
	ReasonSwipeExtra   Reason = "swipe_extra"  // 追加スワイプ
	ReasonSpecialLike  Reason = "special_like" // スペシャルLike
	ReasonSuperLike    Reason = "super_like"   // スーパーLike
	ReasonBoost        Reason = "boost"        // ブースト
	ReasonPriority     Reason = "priority"     // 優先表示
	ReasonRefund       Reason = "refund"       // 返金・調整
)

// NewReason 新しいReasonを作成
func NewReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid reason: %s", s)
	}
	return r, nil
}

// String 文字列表現を返す
func (r Reason) String() string {
	return string(r)
}

// Valid 有効な理由コードかどうかを返す
func (r Reason) Valid() bool {
	switch r {
	case ReasonPurchase, ReasonBonus, ReasonSubscription, ReasonSwipe,
		ReasonSwipeExtra, ReasonSpecialLike, ReasonSuperLike,
		ReasonBoost, ReasonPriority, ReasonRefund:
		return true
	default:
		return false
	}
}
