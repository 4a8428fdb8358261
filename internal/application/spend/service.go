package spend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/actionlog"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// SpendApplicationService コイン消費アプリケーションサービス
type SpendApplicationService struct {
	actionLogRepo actionlog.ActionLogRepository
	ledgerEngine  *service.LedgerEngine
	catalog       *catalog.Catalog
	logger        *otelinfra.Logger
	metrics       *otelinfra.Metrics
	tracer        trace.Tracer
}

// NewSpendApplicationService 新しいSpendApplicationServiceを作成
func NewSpendApplicationService(
	actionLogRepo actionlog.ActionLogRepository,
	ledgerEngine *service.LedgerEngine,
	cat *catalog.Catalog,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *SpendApplicationService {
	return &SpendApplicationService{
		actionLogRepo: actionLogRepo,
		ledgerEngine:  ledgerEngine,
		catalog:       cat,
		logger:        logger,
		metrics:       metrics,
		tracer:        otel.Tracer("spend-service"),
	}
}

// Spend アクションのコストを消費
// 残高の減算とアクションログの追記は同一のアトミック単位で行う
func (s *SpendApplicationService) Spend(ctx context.Context, req *SpendRequest) (*SpendResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SpendApplicationService.Spend")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("action", req.Action),
	)

	s.logger.Info(ctx, "Spending coins", map[string]interface{}{
		"user_id": req.UserID,
		"action":  req.Action,
	})

	actionCost, err := s.catalog.ActionCost(req.Action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("cost", actionCost.Cost))

	result, err := s.ledgerEngine.Apply(ctx, service.ApplyRequest{
		UserID:   req.UserID,
		Type:     transaction.TransactionTypeDebit,
		Amount:   actionCost.Cost,
		Reason:   actionCost.Reason,
		Metadata: req.Metadata,
		InUnit: func(ctx context.Context, result *service.ApplyResult) error {
			balanceAfter := result.BalanceAfter
			entry, err := actionlog.NewEntry(
				s.generateEntryID(),
				req.UserID,
				req.Action,
				actionlog.StatusSuccess,
				actionCost.Cost,
				&balanceAfter,
			)
			if err != nil {
				return err
			}
			if err := s.actionLogRepo.Append(ctx, entry); err != nil {
				return fmt.Errorf("failed to append action log: %w", err)
			}
			return nil
		},
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to spend coins", err, map[string]interface{}{
			"user_id": req.UserID,
			"action":  req.Action,
			"cost":    actionCost.Cost,
		})
		s.metrics.RecordError(ctx, "spend_failed")

		// 残高不足はログに失敗エントリとして残す（付与・減算は一切行わない）
		if errors.Is(err, account.ErrInsufficientBalance) {
			s.appendFailedEntry(ctx, req.UserID, req.Action, actionCost.Cost)
		}
		return nil, err
	}

	// メトリクス記録
	s.metrics.RecordTransaction(ctx, "debit", actionCost.Reason.String())
	s.metrics.RecordCoinBalance(ctx, req.UserID, result.BalanceAfter)

	s.logger.Info(ctx, "Coins spent successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"action":         req.Action,
		"transaction_id": result.TransactionID,
		"balance_after":  result.BalanceAfter,
	})

	return &SpendResponse{
		TransactionID: result.TransactionID,
		Cost:          actionCost.Cost,
		BalanceAfter:  result.BalanceAfter,
		Status:        "completed",
	}, nil
}

// appendFailedEntry 失敗したアクション試行をログに追記
func (s *SpendApplicationService) appendFailedEntry(ctx context.Context, userID, action string, cost int64) {
	entry, err := actionlog.NewEntry(s.generateEntryID(), userID, action, actionlog.StatusFailed, cost, nil)
	if err != nil {
		s.logger.Error(ctx, "Failed to build failed action log entry", err, nil)
		return
	}
	if err := s.actionLogRepo.Append(ctx, entry); err != nil {
		s.logger.Error(ctx, "Failed to append failed action log entry", err, map[string]interface{}{
			"user_id": userID,
			"action":  action,
		})
	}
}

// generateEntryID アクションログのエントリIDを生成
func (s *SpendApplicationService) generateEntryID() string {
	return fmt.Sprintf("act_%s", uuid.NewString())
}
