package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/audit"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// AdminApplicationService 管理者操作アプリケーションサービス
// 認可（管理者権限の確認）はプレゼンテーション層の前提条件であり、ここでは扱わない
type AdminApplicationService struct {
	auditRepo    audit.AuditRepository
	ledgerEngine *service.LedgerEngine
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewAdminApplicationService 新しいAdminApplicationServiceを作成
func NewAdminApplicationService(
	auditRepo audit.AuditRepository,
	ledgerEngine *service.LedgerEngine,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *AdminApplicationService {
	return &AdminApplicationService{
		auditRepo:    auditRepo,
		ledgerEngine: ledgerEngine,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("admin-service"),
	}
}

// AdjustBalance 対象ユーザーの残高を調整
// 正の値は加算（reason=bonus）、負の値は絶対値の減算（reason=refund）として記録する
// 台帳コミットの成功後に必ず監査レコードを追記する
func (s *AdminApplicationService) AdjustBalance(ctx context.Context, req *AdjustBalanceRequest) (*AdjustBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AdminApplicationService.AdjustBalance")
	defer span.End()

	span.SetAttributes(
		attribute.String("admin_id", req.AdminID),
		attribute.String("target_user_id", req.TargetUserID),
		attribute.Int64("amount", req.Amount),
	)

	s.logger.Info(ctx, "Adjusting balance", map[string]interface{}{
		"admin_id":       req.AdminID,
		"target_user_id": req.TargetUserID,
		"amount":         req.Amount,
		"reason":         req.Reason,
	})

	// バリデーション
	if req.Amount == 0 {
		err := account.ErrInvalidAmount
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	txnType := transaction.TransactionTypeCredit
	reason := transaction.ReasonBonus
	amount := req.Amount
	if req.Amount < 0 {
		txnType = transaction.TransactionTypeDebit
		reason = transaction.ReasonRefund
		amount = -req.Amount
	}

	memo := req.Reason
	result, err := s.ledgerEngine.Apply(ctx, service.ApplyRequest{
		UserID: req.TargetUserID,
		Type:   txnType,
		Amount: amount,
		Reason: reason,
		Memo:   &memo,
		Metadata: map[string]interface{}{
			"admin_id": req.AdminID,
		},
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to adjust balance", err, map[string]interface{}{
			"admin_id":       req.AdminID,
			"target_user_id": req.TargetUserID,
			"amount":         req.Amount,
		})
		s.metrics.RecordError(ctx, "adjust_failed")
		return nil, err
	}

	// 監査レコードは台帳コミットの後に追記する
	adminAudit, err := audit.NewAdminAudit(
		fmt.Sprintf("adt_%s", uuid.NewString()),
		req.AdminID,
		req.TargetUserID,
		req.Amount,
		req.Reason,
		result.TransactionID,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if err := s.auditRepo.SaveAdminAudit(ctx, adminAudit); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to save admin audit", err, map[string]interface{}{
			"admin_id":       req.AdminID,
			"transaction_id": result.TransactionID,
		})
		return nil, fmt.Errorf("failed to save admin audit: %w", err)
	}

	// メトリクス記録
	s.metrics.RecordTransaction(ctx, txnType.String(), reason.String())
	s.metrics.RecordCoinBalance(ctx, req.TargetUserID, result.BalanceAfter)

	s.logger.Info(ctx, "Balance adjusted successfully", map[string]interface{}{
		"admin_id":       req.AdminID,
		"target_user_id": req.TargetUserID,
		"transaction_id": result.TransactionID,
		"balance_after":  result.BalanceAfter,
	})

	return &AdjustBalanceResponse{
		TransactionID: result.TransactionID,
		BalanceAfter:  result.BalanceAfter,
		Status:        "completed",
	}, nil
}
