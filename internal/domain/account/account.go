package account

import (
	"regexp"
	"time"
)

const (
	// MaxBalance 最大残高 (10兆)
	MaxBalance = 10_000_000_000_000
	// MaxAmount 1回の操作で扱える最大金額
	MaxAmount = 10_000_000_000_000
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// Subscription サブスクリプション状態
type Subscription struct {
	Active            bool
	LastDailyCreditAt *time.Time
	LastBoostAt       *time.Time
	BoostQuota        int64
}

// Account コイン口座エンティティ
// 最初の台帳書き込み時に暗黙的に作成され、削除されることはない
type Account struct {
	userID       string
	coinBalance  int64 // 整数値（小数点なし）、非負
	rewardLog    map[string]time.Time // "rewardType:YYYY-MM-DD" -> 付与日時
	subscription Subscription
	version      int // 楽観的ロック用
}

// NewAccount 新しいAccountエンティティを作成
func NewAccount(userID string, coinBalance int64, rewardLog map[string]time.Time, subscription Subscription, version int) (*Account, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if coinBalance < 0 || coinBalance > MaxBalance {
		return nil, ErrBalanceOutOfRange
	}
	if rewardLog == nil {
		rewardLog = make(map[string]time.Time)
	}
	return &Account{
		userID:       userID,
		coinBalance:  coinBalance,
		rewardLog:    rewardLog,
		subscription: subscription,
		version:      version,
	}, nil
}

// NewEmptyAccount 残高0の新しいAccountエンティティを作成（初回書き込み時の暗黙作成用）
func NewEmptyAccount(userID string) (*Account, error) {
	return NewAccount(userID, 0, nil, Subscription{}, 0)
}

// UserID ユーザーIDを返す
func (a *Account) UserID() string {
	return a.userID
}

// CoinBalance コイン残高を返す
func (a *Account) CoinBalance() int64 {
	return a.coinBalance
}

// RewardLog 報酬付与ログを返す
func (a *Account) RewardLog() map[string]time.Time {
	return a.rewardLog
}

// Subscription サブスクリプション状態を返す
func (a *Account) Subscription() Subscription {
	return a.subscription
}

// Version バージョンを返す（楽観的ロック用）
func (a *Account) Version() int {
	return a.version
}

// Credit コインを加算する
func (a *Account) Credit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	// オーバーフローチェック
	if a.coinBalance > MaxBalance-amount {
		return ErrBalanceOutOfRange
	}
	a.coinBalance += amount
	return nil
}

// Debit コインを減算する
// 残高が不足する場合はErrInsufficientBalanceを返し、残高は変更しない
func (a *Account) Debit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	if a.coinBalance < amount {
		return ErrInsufficientBalance
	}
	a.coinBalance -= amount
	return nil
}

// HasClaimedReward 指定キーの報酬が付与済みかどうかを返す
func (a *Account) HasClaimedReward(key string) bool {
	_, ok := a.rewardLog[key]
	return ok
}

// ClaimReward 報酬付与ログにキーを記録する
// 既に記録済みの場合はErrRewardAlreadyClaimedを返す
func (a *Account) ClaimReward(key string, now time.Time) error {
	if a.HasClaimedReward(key) {
		return ErrRewardAlreadyClaimed
	}
	a.rewardLog[key] = now
	return nil
}

// ActivateSubscription サブスクリプションを有効化する
func (a *Account) ActivateSubscription() {
	a.subscription.Active = true
}

// DeactivateSubscription サブスクリプションを無効化する
func (a *Account) DeactivateSubscription() {
	a.subscription.Active = false
}

// RecordDailyCredit デイリー付与日時を記録する
func (a *Account) RecordDailyCredit(now time.Time) {
	t := now
	a.subscription.LastDailyCreditAt = &t
}

// ShouldGrantBoost ブースト付与が必要かどうかを返す
// 最終ブースト付与が未記録、または指定間隔より古い場合に付与する
func (a *Account) ShouldGrantBoost(now time.Time, interval time.Duration) bool {
	last := a.subscription.LastBoostAt
	if last == nil {
		return true
	}
	return now.Sub(*last) > interval
}

// GrantBoost ブースト枠を加算して付与日時を記録する
func (a *Account) GrantBoost(quota int64, now time.Time) {
	a.subscription.BoostQuota += quota
	t := now
	a.subscription.LastBoostAt = &t
}

// MustNewAccount テスト用ヘルパー: NewAccountを呼び出し、エラーが発生した場合はpanicする
func MustNewAccount(userID string, coinBalance int64, rewardLog map[string]time.Time, subscription Subscription, version int) *Account {
	a, err := NewAccount(userID, coinBalance, rewardLog, subscription, version)
	if err != nil {
		panic(err)
	}
	return a
}
