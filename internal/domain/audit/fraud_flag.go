package audit

import (
	"time"
)

// FraudFlag 不正検知フラグレコード
// 閾値を超えた加算トランザクション1件につき最大1件作成される
type FraudFlag struct {
	flagID        string
	userID        string
	transactionID string
	amount        int64
	threshold     int64
	createdAt     time.Time
}

// NewFraudFlag 新しいFraudFlagを作成
func NewFraudFlag(
	flagID string,
	userID string,
	transactionID string,
	amount int64,
	threshold int64,
) (*FraudFlag, error) {
	return RestoreFraudFlag(flagID, userID, transactionID, amount, threshold, time.Now())
}

// RestoreFraudFlag 保存済みデータからFraudFlagを復元
func RestoreFraudFlag(
	flagID string,
	userID string,
	transactionID string,
	amount int64,
	threshold int64,
	createdAt time.Time,
) (*FraudFlag, error) {
	if flagID == "" {
		return nil, ErrInvalidFlagID
	}
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if transactionID == "" {
		return nil, ErrInvalidTransactionID
	}
	if amount <= 0 || threshold <= 0 {
		return nil, ErrInvalidAmount
	}

	return &FraudFlag{
		flagID:        flagID,
		userID:        userID,
		transactionID: transactionID,
		amount:        amount,
		threshold:     threshold,
		createdAt:     createdAt,
	}, nil
}

// FlagID フラグIDを返す
func (f *FraudFlag) FlagID() string {
	return f.flagID
}

// UserID ユーザーIDを返す
func (f *FraudFlag) UserID() string {
	return f.userID
}

// TransactionID 対象トランザクションIDを返す
func (f *FraudFlag) TransactionID() string {
	return f.transactionID
}

// Amount 対象金額を返す
func (f *FraudFlag) Amount() int64 {
	return f.amount
}

// Threshold 検知時の閾値を返す
func (f *FraudFlag) Threshold() int64 {
	return f.threshold
}

// CreatedAt 作成日時を返す
func (f *FraudFlag) CreatedAt() time.Time {
	return f.createdAt
}
