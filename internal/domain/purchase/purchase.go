package purchase

import (
	"regexp"
	"time"
)

var (
	purchaseIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
	userIDRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
)

// Purchase コイン購入レコードエンティティ
// purchaseIDはストアの購入トークン由来であり、冪等性キーとして機能する
type Purchase struct {
	purchaseID string
	userID     string
	platform   Platform
	bundleID   string
	status     Status
	totalCoins int64 // 付与された総コイン数（ボーナス込み）
	bonusCoins int64 // 初回購入ボーナス分
	price      int64
	currency   string
	createdAt  time.Time
	verifiedAt *time.Time
}

// NewPurchase 新しいPurchaseエンティティをpending状態で作成
func NewPurchase(
	purchaseID string,
	userID string,
	platform Platform,
	bundleID string,
	price int64,
	currency string,
) (*Purchase, error) {
	return RestorePurchase(purchaseID, userID, platform, bundleID, StatusPending, 0, 0, price, currency, time.Now(), nil)
}

// RestorePurchase 保存済みデータからPurchaseエンティティを復元
func RestorePurchase(
	purchaseID string,
	userID string,
	platform Platform,
	bundleID string,
	status Status,
	totalCoins int64,
	bonusCoins int64,
	price int64,
	currency string,
	createdAt time.Time,
	verifiedAt *time.Time,
) (*Purchase, error) {
	if !purchaseIDRegex.MatchString(purchaseID) {
		return nil, ErrInvalidPurchaseID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !platform.Valid() {
		return nil, ErrUnsupportedPlatform
	}
	if bundleID == "" {
		return nil, ErrInvalidBundleID
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if totalCoins < 0 || bonusCoins < 0 || bonusCoins > totalCoins || price < 0 {
		return nil, ErrInvalidAmount
	}

	return &Purchase{
		purchaseID: purchaseID,
		userID:     userID,
		platform:   platform,
		bundleID:   bundleID,
		status:     status,
		totalCoins: totalCoins,
		bonusCoins: bonusCoins,
		price:      price,
		currency:   currency,
		createdAt:  createdAt,
		verifiedAt: verifiedAt,
	}, nil
}

// PurchaseID 購入IDを返す
func (p *Purchase) PurchaseID() string {
	return p.purchaseID
}

// UserID ユーザーIDを返す
func (p *Purchase) UserID() string {
	return p.userID
}

// Platform プラットフォームを返す
func (p *Purchase) Platform() Platform {
	return p.platform
}

// BundleID バンドルIDを返す
func (p *Purchase) BundleID() string {
	return p.bundleID
}

// Status ステータスを返す
func (p *Purchase) Status() Status {
	return p.status
}

// TotalCoins 付与総コイン数を返す
func (p *Purchase) TotalCoins() int64 {
	return p.totalCoins
}

// BonusCoins ボーナスコイン数を返す
func (p *Purchase) BonusCoins() int64 {
	return p.bonusCoins
}

// Price 支払金額を返す
func (p *Purchase) Price() int64 {
	return p.price
}

// Currency 通貨コードを返す
func (p *Purchase) Currency() string {
	return p.currency
}

// CreatedAt 作成日時を返す
func (p *Purchase) CreatedAt() time.Time {
	return p.createdAt
}

// VerifiedAt 検証完了日時を返す
func (p *Purchase) VerifiedAt() *time.Time {
	return p.verifiedAt
}

// IsVerified 検証済みかどうかを返す
func (p *Purchase) IsVerified() bool {
	return p.status == StatusVerified
}

// Verify 購入を検証済みに遷移させ、付与コイン数を確定する
// 既に検証済みの場合はErrAlreadyProcessedを返す（冪等性の要）
func (p *Purchase) Verify(totalCoins, bonusCoins int64, now time.Time) error {
	if p.status == StatusVerified {
		return ErrAlreadyProcessed
	}
	if totalCoins <= 0 || bonusCoins < 0 || bonusCoins > totalCoins {
		return ErrInvalidAmount
	}
	p.status = StatusVerified
	p.totalCoins = totalCoins
	p.bonusCoins = bonusCoins
	p.verifiedAt = &now
	return nil
}

// MustNewPurchase テスト用ヘルパー: RestorePurchaseを呼び出し、エラーが発生した場合はpanicする
func MustNewPurchase(
	purchaseID string,
	userID string,
	platform Platform,
	bundleID string,
	status Status,
	totalCoins int64,
	bonusCoins int64,
	price int64,
	currency string,
) *Purchase {
	p, err := RestorePurchase(purchaseID, userID, platform, bundleID, status, totalCoins, bonusCoins, price, currency, time.Now(), nil)
	if err != nil {
		panic(err)
	}
	return p
}
