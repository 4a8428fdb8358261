package transaction

import (
	"fmt"
)

// TransactionType トランザクションタイプを表す値オブジェクト
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit" // 加算
	TransactionTypeDebit  TransactionType = "debit"  // 減算
)

// NewTransactionType 新しいTransactionTypeを作成
func NewTransactionType(s string) (TransactionType, error) {
	switch s {
	case "credit", "debit":
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String 文字列表現を返す
func (tt TransactionType) String() string {
	return string(tt)
}

// Valid 有効なトランザクションタイプかどうかを返す
func (tt TransactionType) Valid() bool {
	return tt == TransactionTypeCredit || tt == TransactionTypeDebit
}

// IsCredit 加算かどうかを返す
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeCredit
}

// IsDebit 減算かどうかを返す
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeDebit
}
