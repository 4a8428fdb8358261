package transaction

import (
	"regexp"
	"time"
)

const (
	// MaxAmount 最大金額 (10兆)
	MaxAmount = 10_000_000_000_000
	// MaxBalance 最大残高 (10兆)
	MaxBalance = 10_000_000_000_000
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
)

// Transaction 台帳トランザクションエンティティ
// LedgerEngineの呼び出しごとに1件だけ作成され、変更・削除されることはない
type Transaction struct {
	transactionID   string
	userID          string
	transactionType TransactionType
	reason          Reason
	amount          int64 // 整数値（小数点なし）、正の値
	balanceAfter    int64 // 書き込み直後の残高スナップショット、非負
	memo            *string
	metadata        map[string]interface{}
	createdAt       time.Time
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	reason Reason,
	amount int64,
	balanceAfter int64,
	memo *string,
	metadata map[string]interface{},
) (*Transaction, error) {
	return RestoreTransaction(transactionID, userID, transactionType, reason, amount, balanceAfter, memo, metadata, time.Now())
}

// RestoreTransaction 保存済みデータからTransactionエンティティを復元
func RestoreTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	reason Reason,
	amount int64,
	balanceAfter int64,
	memo *string,
	metadata map[string]interface{},
	createdAt time.Time,
) (*Transaction, error) {
	if !idRegex.MatchString(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !transactionType.Valid() {
		return nil, ErrInvalidTransaction
	}
	if !reason.Valid() {
		return nil, ErrInvalidReason
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount > MaxAmount {
		return nil, ErrAmountTooLarge
	}
	if balanceAfter < 0 || balanceAfter > MaxBalance {
		return nil, ErrBalanceOutOfRange
	}

	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		reason:          reason,
		amount:          amount,
		balanceAfter:    balanceAfter,
		memo:            memo,
		metadata:        metadata,
		createdAt:       createdAt,
	}, nil
}

// TransactionID トランザクションIDを返す
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

// UserID ユーザーIDを返す
func (t *Transaction) UserID() string {
	return t.userID
}

// TransactionType トランザクションタイプを返す
func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

// Reason 理由コードを返す
func (t *Transaction) Reason() Reason {
	return t.reason
}

// Amount 金額を返す
func (t *Transaction) Amount() int64 {
	return t.amount
}

// BalanceAfter 処理後の残高を返す
func (t *Transaction) BalanceAfter() int64 {
	return t.balanceAfter
}

// Memo メモを返す
func (t *Transaction) Memo() *string {
	return t.memo
}

// Metadata メタデータを返す
func (t *Transaction) Metadata() map[string]interface{} {
	return t.metadata
}

// CreatedAt 作成日時を返す
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// MustNewTransaction テスト用ヘルパー: NewTransactionを呼び出し、エラーが発生した場合はpanicする
func MustNewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	reason Reason,
	amount int64,
	balanceAfter int64,
	memo *string,
	metadata map[string]interface{},
) *Transaction {
	t, err := NewTransaction(transactionID, userID, transactionType, reason, amount, balanceAfter, memo, metadata)
	if err != nil {
		panic(err)
	}
	return t
}
