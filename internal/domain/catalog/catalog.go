package catalog

import (
	"math"
	"time"

	"coin-server/internal/domain/transaction"
)

// CoinBundle 販売コインバンドル定義
type CoinBundle struct {
	BundleID  string
	Coins     int64 // 基本付与コイン数
	Price     int64
	Currency  string
	BonusRate float64 // 初回購入ボーナス率（0で無効）
}

// FirstPurchaseBonus 初回購入時のボーナスコイン数を返す
func (b CoinBundle) FirstPurchaseBonus() int64 {
	return int64(math.Round(float64(b.Coins) * b.BonusRate))
}

// ActionCost コイン消費アクションの定義
type ActionCost struct {
	Action string
	Cost   int64
	Reason transaction.Reason // 台帳に記録する理由コード
}

// SubscriptionPlan サブスクリプションプラン定義
type SubscriptionPlan struct {
	PlanID        string
	DailyCoins    int64         // 毎日付与するコイン数
	WeeklyBoost   int64         // 付与するブースト枠数
	BoostInterval time.Duration // ブースト付与の最小間隔
}

// Catalog バンドル・アクションコスト・プランの静的定義集合
// 起動時に一度だけ構築され、以後は読み取り専用で共有される
type Catalog struct {
	bundles              map[string]CoinBundle
	actionCosts          map[string]ActionCost
	plans                map[string]SubscriptionPlan
	dailyRewardCoins     int64
	fraudCreditThreshold int64
}

// NewCatalog 新しいCatalogを構築
func NewCatalog(
	bundles []CoinBundle,
	actionCosts []ActionCost,
	plans []SubscriptionPlan,
	dailyRewardCoins int64,
	fraudCreditThreshold int64,
) (*Catalog, error) {
	if dailyRewardCoins <= 0 || fraudCreditThreshold <= 0 {
		return nil, ErrInvalidCatalog
	}

	bundleMap := make(map[string]CoinBundle, len(bundles))
	for _, b := range bundles {
		if b.BundleID == "" || b.Coins <= 0 || b.Price <= 0 || b.BonusRate < 0 || b.BonusRate > 1 {
			return nil, ErrInvalidCatalog
		}
		bundleMap[b.BundleID] = b
	}

	costMap := make(map[string]ActionCost, len(actionCosts))
	for _, c := range actionCosts {
		if c.Action == "" || c.Cost <= 0 || !c.Reason.Valid() {
			return nil, ErrInvalidCatalog
		}
		costMap[c.Action] = c
	}

	planMap := make(map[string]SubscriptionPlan, len(plans))
	for _, p := range plans {
		if p.PlanID == "" || p.DailyCoins < 0 || p.WeeklyBoost < 0 || p.BoostInterval <= 0 {
			return nil, ErrInvalidCatalog
		}
		planMap[p.PlanID] = p
	}

	return &Catalog{
		bundles:              bundleMap,
		actionCosts:          costMap,
		plans:                planMap,
		dailyRewardCoins:     dailyRewardCoins,
		fraudCreditThreshold: fraudCreditThreshold,
	}, nil
}

// Bundle バンドルIDでバンドル定義を取得
func (c *Catalog) Bundle(bundleID string) (CoinBundle, error) {
	b, ok := c.bundles[bundleID]
	if !ok {
		return CoinBundle{}, ErrUnknownBundle
	}
	return b, nil
}

// ActionCost アクション名でコスト定義を取得
func (c *Catalog) ActionCost(action string) (ActionCost, error) {
	ac, ok := c.actionCosts[action]
	if !ok {
		return ActionCost{}, ErrUnsupportedAction
	}
	return ac, nil
}

// Plan プランIDでプラン定義を取得
func (c *Catalog) Plan(planID string) (SubscriptionPlan, error) {
	p, ok := c.plans[planID]
	if !ok {
		return SubscriptionPlan{}, ErrUnknownPlan
	}
	return p, nil
}

// DefaultPlan 既定のサブスクリプションプランを返す
func (c *Catalog) DefaultPlan() (SubscriptionPlan, error) {
	return c.Plan(DefaultPlanID)
}

// DailyRewardCoins デイリー報酬コイン数を返す
func (c *Catalog) DailyRewardCoins() int64 {
	return c.dailyRewardCoins
}

// FraudCreditThreshold 不正検知の加算閾値を返す
func (c *Catalog) FraudCreditThreshold() int64 {
	return c.fraudCreditThreshold
}
