package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/transaction"
)

// catalogFile カタログ定義ファイルのスキーマ
type catalogFile struct {
	Bundles     []bundleDef     `toml:"bundles"`
	ActionCosts []actionCostDef `toml:"action_costs"`
	Plans       []planDef       `toml:"plans"`
	Rewards     rewardDef       `toml:"rewards"`
	Fraud       fraudDef        `toml:"fraud"`
}

type bundleDef struct {
	BundleID  string  `toml:"bundle_id"`
	Coins     int64   `toml:"coins"`
	Price     int64   `toml:"price"`
	Currency  string  `toml:"currency"`
	BonusRate float64 `toml:"bonus_rate"`
}

type actionCostDef struct {
	Action string `toml:"action"`
	Cost   int64  `toml:"cost"`
	Reason string `toml:"reason"`
}

type planDef struct {
	PlanID        string `toml:"plan_id"`
	DailyCoins    int64  `toml:"daily_coins"`
	WeeklyBoost   int64  `toml:"weekly_boost"`
	BoostInterval string `toml:"boost_interval"` // time.ParseDuration形式
}

type rewardDef struct {
	DailyCoins int64 `toml:"daily_coins"`
}

type fraudDef struct {
	CreditThreshold int64 `toml:"credit_threshold"`
}

// LoadCatalog カタログ定義ファイルを読み込む
// パスが空の場合は組み込みの既定値を返す
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.DefaultCatalog(), nil
	}

	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file: %w", err)
	}

	bundles := make([]catalog.CoinBundle, 0, len(file.Bundles))
	for _, b := range file.Bundles {
		bundles = append(bundles, catalog.CoinBundle{
			BundleID:  b.BundleID,
			Coins:     b.Coins,
			Price:     b.Price,
			Currency:  b.Currency,
			BonusRate: b.BonusRate,
		})
	}

	actionCosts := make([]catalog.ActionCost, 0, len(file.ActionCosts))
	for _, c := range file.ActionCosts {
		reason, err := transaction.NewReason(c.Reason)
		if err != nil {
			return nil, fmt.Errorf("invalid action cost reason %q: %w", c.Reason, err)
		}
		actionCosts = append(actionCosts, catalog.ActionCost{
			Action: c.Action,
			Cost:   c.Cost,
			Reason: reason,
		})
	}

	plans := make([]catalog.SubscriptionPlan, 0, len(file.Plans))
	for _, p := range file.Plans {
		interval, err := time.ParseDuration(p.BoostInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid boost interval %q: %w", p.BoostInterval, err)
		}
		plans = append(plans, catalog.SubscriptionPlan{
			PlanID:        p.PlanID,
			DailyCoins:    p.DailyCoins,
			WeeklyBoost:   p.WeeklyBoost,
			BoostInterval: interval,
		})
	}

	dailyCoins := file.Rewards.DailyCoins
	if dailyCoins == 0 {
		dailyCoins = catalog.DefaultDailyRewardCoins
	}
	threshold := file.Fraud.CreditThreshold
	if threshold == 0 {
		threshold = catalog.DefaultFraudCreditThreshold
	}

	return catalog.NewCatalog(bundles, actionCosts, plans, dailyCoins, threshold)
}
