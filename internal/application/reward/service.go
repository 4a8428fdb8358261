package reward

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// RewardApplicationService デイリー報酬アプリケーションサービス
// 報酬の重複判定はデプロイ全体で一貫した基準タイムゾーンの暦日で行う
type RewardApplicationService struct {
	ledgerEngine *service.LedgerEngine
	catalog      *catalog.Catalog
	location     *time.Location
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

// NewRewardApplicationService 新しいRewardApplicationServiceを作成
func NewRewardApplicationService(
	ledgerEngine *service.LedgerEngine,
	cat *catalog.Catalog,
	location *time.Location,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *RewardApplicationService {
	return &RewardApplicationService{
		ledgerEngine: ledgerEngine,
		catalog:      cat,
		location:     location,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("reward-service"),
		now:          time.Now,
	}
}

// ClaimDailyReward デイリー報酬を受け取る
// 同一報酬タイプは1暦日に1回のみ。キーの判定と付与は同一のアトミック単位で行う
func (s *RewardApplicationService) ClaimDailyReward(ctx context.Context, req *ClaimDailyRewardRequest) (*ClaimDailyRewardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "RewardApplicationService.ClaimDailyReward")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("reward_type", req.RewardType),
	)

	s.logger.Info(ctx, "Claiming daily reward", map[string]interface{}{
		"user_id":     req.UserID,
		"reward_type": req.RewardType,
	})

	if req.RewardType == "" {
		err := account.ErrRewardInvalidType
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	coins := s.catalog.DailyRewardCoins()
	if req.Coins != nil {
		if *req.Coins <= 0 {
			err := account.ErrInvalidAmount
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
		coins = *req.Coins
	}

	now := s.now()
	rewardKey := fmt.Sprintf("%s:%s", req.RewardType, now.In(s.location).Format("2006-01-02"))
	span.SetAttributes(attribute.String("reward_key", rewardKey))

	memo := req.RewardType
	result, err := s.ledgerEngine.Apply(ctx, service.ApplyRequest{
		UserID: req.UserID,
		Type:   transaction.TransactionTypeCredit,
		Amount: coins,
		Reason: transaction.ReasonBonus,
		Memo:   &memo,
		Prepare: func(ctx context.Context, acc *account.Account) error {
			return acc.ClaimReward(rewardKey, now)
		},
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to claim daily reward", err, map[string]interface{}{
			"user_id":    req.UserID,
			"reward_key": rewardKey,
		})
		s.metrics.RecordError(ctx, "reward_claim_failed")
		return nil, err
	}

	// メトリクス記録
	s.metrics.RecordTransaction(ctx, "credit", transaction.ReasonBonus.String())
	s.metrics.RecordCoinBalance(ctx, req.UserID, result.BalanceAfter)

	s.logger.Info(ctx, "Daily reward claimed successfully", map[string]interface{}{
		"user_id":        req.UserID,
		"reward_key":     rewardKey,
		"transaction_id": result.TransactionID,
		"coins":          coins,
	})

	return &ClaimDailyRewardResponse{
		TransactionID: result.TransactionID,
		Coins:         coins,
		BalanceAfter:  result.BalanceAfter,
		Status:        "completed",
	}, nil
}
