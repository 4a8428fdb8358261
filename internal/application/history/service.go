package history

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// HistoryApplicationService 残高・履歴参照アプリケーションサービス
type HistoryApplicationService struct {
	accountRepo     account.AccountRepository
	transactionRepo transaction.TransactionRepository
	logger          *otelinfra.Logger
	metrics         *otelinfra.Metrics
	tracer          trace.Tracer
}

// NewHistoryApplicationService 新しいHistoryApplicationServiceを作成
func NewHistoryApplicationService(
	accountRepo account.AccountRepository,
	transactionRepo transaction.TransactionRepository,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *HistoryApplicationService {
	return &HistoryApplicationService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
		metrics:         metrics,
		tracer:          otel.Tracer("history-service"),
	}
}

// GetBalance 残高を取得
// アカウント未作成のユーザーは残高0として扱う
func (s *HistoryApplicationService) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetBalance")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
	)

	s.logger.Info(ctx, "Getting balance", map[string]interface{}{
		"user_id": req.UserID,
	})

	acc, err := s.accountRepo.FindByUserID(ctx, req.UserID)
	if errors.Is(err, account.ErrAccountNotFound) {
		span.SetStatus(otelcodes.Ok, "account not found, zero balance")
		return &GetBalanceResponse{
			UserID:      req.UserID,
			CoinBalance: 0,
		}, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to find account", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	s.metrics.RecordCoinBalance(ctx, req.UserID, acc.CoinBalance())

	return &GetBalanceResponse{
		UserID:      req.UserID,
		CoinBalance: acc.CoinBalance(),
	}, nil
}

// GetTransactionHistory トランザクション履歴を取得
func (s *HistoryApplicationService) GetTransactionHistory(ctx context.Context, req *GetTransactionHistoryRequest) (*GetTransactionHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "HistoryApplicationService.GetTransactionHistory")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.Int("limit", req.Limit),
		attribute.Int("offset", req.Offset),
	)

	s.logger.Info(ctx, "Getting transaction history", map[string]interface{}{
		"user_id":          req.UserID,
		"limit":            req.Limit,
		"offset":           req.Offset,
		"transaction_type": req.TransactionType,
		"reason":           req.Reason,
	})

	// バリデーション
	if req.Limit <= 0 {
		req.Limit = 50 // デフォルト値
	}
	if req.Limit > 100 {
		req.Limit = 100 // 最大値
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	transactions, err := s.transactionRepo.FindByUserID(ctx, req.UserID, req.Limit, req.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to get transaction history", err, map[string]interface{}{
			"user_id": req.UserID,
		})
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}

	// フィルタリング
	filtered := make([]*transaction.Transaction, 0, len(transactions))
	for _, txn := range transactions {
		if req.TransactionType != "" {
			transactionType, err := transaction.NewTransactionType(req.TransactionType)
			if err == nil && txn.TransactionType() != transactionType {
				continue
			}
		}

		if req.Reason != "" {
			reason, err := transaction.NewReason(req.Reason)
			if err == nil && txn.Reason() != reason {
				continue
			}
		}

		filtered = append(filtered, txn)
	}

	span.SetAttributes(attribute.Int("result_count", len(filtered)))

	return &GetTransactionHistoryResponse{
		Transactions: filtered,
		Total:        len(filtered),
		Limit:        req.Limit,
		Offset:       req.Offset,
	}, nil
}
