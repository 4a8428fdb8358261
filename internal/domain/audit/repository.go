package audit

import (
	"context"
)

// AuditRepository 監査レコードリポジトリインターフェース
type AuditRepository interface {
	// SaveAdminAudit 管理者調整の監査レコードを保存
	SaveAdminAudit(ctx context.Context, a *AdminAudit) error

	// SaveFraudFlag 不正検知フラグを保存
	SaveFraudFlag(ctx context.Context, f *FraudFlag) error

	// FindFraudFlagsByUserID ユーザーIDで不正検知フラグ一覧を取得（新しい順）
	FindFraudFlagsByUserID(ctx context.Context, userID string, limit, offset int) ([]*FraudFlag, error)
}
