package catalog

import (
	"time"

	"coin-server/internal/domain/transaction"
)

// DefaultPlanID 既定のサブスクリプションプランID
const DefaultPlanID = "premium_monthly"

// DefaultBonusRate 初回購入ボーナス率の既定値
const DefaultBonusRate = 0.2

// DefaultBundles 既定のコインバンドル定義
func DefaultBundles() []CoinBundle {
	return []CoinBundle{
		{BundleID: "small", Coins: 100, Price: 1000, Currency: "KRW", BonusRate: DefaultBonusRate},
		{BundleID: "medium", Coins: 500, Price: 4500, Currency: "KRW", BonusRate: DefaultBonusRate},
		{BundleID: "large", Coins: 1200, Price: 9000, Currency: "KRW", BonusRate: DefaultBonusRate},
	}
}

// DefaultActionCosts 既定のアクションコスト定義
func DefaultActionCosts() []ActionCost {
	return []ActionCost{
		{Action: "swipe_extra", Cost: 5, Reason: transaction.ReasonSwipeExtra},
		{Action: "special_like", Cost: 10, Reason: transaction.ReasonSpecialLike},
		{Action: "super_like", Cost: 50, Reason: transaction.ReasonSuperLike},
		{Action: "boost", Cost: 200, Reason: transaction.ReasonBoost},
		{Action: "priority", Cost: 150, Reason: transaction.ReasonPriority},
	}
}

// DefaultPlans 既定のサブスクリプションプラン定義
func DefaultPlans() []SubscriptionPlan {
	return []SubscriptionPlan{
		{
			PlanID:        DefaultPlanID,
			DailyCoins:    25,
			WeeklyBoost:   1,
			BoostInterval: 7 * 24 * time.Hour,
		},
	}
}

const (
	// DefaultDailyRewardCoins デイリー報酬の既定値
	DefaultDailyRewardCoins = 10
	// DefaultFraudCreditThreshold 不正検知閾値の既定値
	DefaultFraudCreditThreshold = 5000
)

// DefaultCatalog 既定値のみで構築したCatalogを返す
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		DefaultBundles(),
		DefaultActionCosts(),
		DefaultPlans(),
		DefaultDailyRewardCoins,
		DefaultFraudCreditThreshold,
	)
	if err != nil {
		panic(err)
	}
	return c
}
