package audit

import (
	"time"
)

// AdminAudit 管理者による残高調整の監査レコード
// 調整トランザクションの成功後に必ず1件作成される
type AdminAudit struct {
	auditID       string
	adminID       string
	targetUserID  string
	amount        int64 // 符号付き（正: 加算、負: 減算）
	reason        string
	transactionID string
	createdAt     time.Time
}

// NewAdminAudit 新しいAdminAuditを作成
func NewAdminAudit(
	auditID string,
	adminID string,
	targetUserID string,
	amount int64,
	reason string,
	transactionID string,
) (*AdminAudit, error) {
	return RestoreAdminAudit(auditID, adminID, targetUserID, amount, reason, transactionID, time.Now())
}

// RestoreAdminAudit 保存済みデータからAdminAuditを復元
func RestoreAdminAudit(
	auditID string,
	adminID string,
	targetUserID string,
	amount int64,
	reason string,
	transactionID string,
	createdAt time.Time,
) (*AdminAudit, error) {
	if auditID == "" {
		return nil, ErrInvalidAuditID
	}
	if adminID == "" {
		return nil, ErrInvalidAdminID
	}
	if targetUserID == "" {
		return nil, ErrInvalidUserID
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	if transactionID == "" {
		return nil, ErrInvalidTransactionID
	}

	return &AdminAudit{
		auditID:       auditID,
		adminID:       adminID,
		targetUserID:  targetUserID,
		amount:        amount,
		reason:        reason,
		transactionID: transactionID,
		createdAt:     createdAt,
	}, nil
}

// AuditID 監査IDを返す
func (a *AdminAudit) AuditID() string {
	return a.auditID
}

// AdminID 管理者IDを返す
func (a *AdminAudit) AdminID() string {
	return a.adminID
}

// TargetUserID 対象ユーザーIDを返す
func (a *AdminAudit) TargetUserID() string {
	return a.targetUserID
}

// Amount 調整量を返す（符号付き）
func (a *AdminAudit) Amount() int64 {
	return a.amount
}

// Reason 調整理由を返す
func (a *AdminAudit) Reason() string {
	return a.reason
}

// TransactionID 紐づくトランザクションIDを返す
func (a *AdminAudit) TransactionID() string {
	return a.transactionID
}

// CreatedAt 作成日時を返す
func (a *AdminAudit) CreatedAt() time.Time {
	return a.createdAt
}
