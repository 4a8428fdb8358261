package subscription

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// sweepConcurrency 同時に処理するアカウント数の上限
const sweepConcurrency = 8

// SubscriptionApplicationService サブスクリプション付与アプリケーションサービス
type SubscriptionApplicationService struct {
	accountRepo  account.AccountRepository
	ledgerEngine *service.LedgerEngine
	catalog      *catalog.Catalog
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

// NewSubscriptionApplicationService 新しいSubscriptionApplicationServiceを作成
func NewSubscriptionApplicationService(
	accountRepo account.AccountRepository,
	ledgerEngine *service.LedgerEngine,
	cat *catalog.Catalog,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *SubscriptionApplicationService {
	return &SubscriptionApplicationService{
		accountRepo:  accountRepo,
		ledgerEngine: ledgerEngine,
		catalog:      cat,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("subscription-service"),
		now:          time.Now,
	}
}

// Sweep 有効なサブスクリプション全員にデイリーコインを付与
// アカウントごとに独立したアトミック単位で処理し、
// 1アカウントの失敗が他のアカウントを妨げることはない
func (s *SubscriptionApplicationService) Sweep(ctx context.Context) (*SweepResponse, error) {
	ctx, span := s.tracer.Start(ctx, "SubscriptionApplicationService.Sweep")
	defer span.End()

	plan, err := s.catalog.DefaultPlan()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	userIDs, err := s.accountRepo.FindActiveSubscriberIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to list active subscribers", err, nil)
		return nil, err
	}

	span.SetAttributes(attribute.Int("subscriber_count", len(userIDs)))
	s.logger.Info(ctx, "Starting subscription sweep", map[string]interface{}{
		"subscriber_count": len(userIDs),
	})

	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			// エラーは集計してログに残すのみ。他のアカウントの処理は止めない
			if err := s.sweepAccount(gctx, userID, plan); err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				s.logger.Error(gctx, "Failed to sweep account", err, map[string]interface{}{
					"user_id": userID,
				})
				s.metrics.RecordSweepAccount(gctx, "failed")
				return nil
			}
			s.metrics.RecordSweepAccount(gctx, "success")
			return nil
		})
	}

	_ = g.Wait()

	resp := &SweepResponse{
		Processed: len(userIDs),
		Succeeded: len(userIDs) - failed,
		Failed:    failed,
	}

	span.SetAttributes(
		attribute.Int("succeeded", resp.Succeeded),
		attribute.Int("failed", resp.Failed),
	)
	span.SetStatus(otelcodes.Ok, "sweep completed")

	s.logger.Info(ctx, "Subscription sweep completed", map[string]interface{}{
		"processed": resp.Processed,
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
	})

	return resp, nil
}

// sweepAccount 1アカウント分の付与を独立したアトミック単位で実行
func (s *SubscriptionApplicationService) sweepAccount(ctx context.Context, userID string, plan catalog.SubscriptionPlan) error {
	now := s.now()
	memo := plan.PlanID

	_, err := s.ledgerEngine.Apply(ctx, service.ApplyRequest{
		UserID: userID,
		Type:   transaction.TransactionTypeCredit,
		Amount: plan.DailyCoins,
		Reason: transaction.ReasonSubscription,
		Memo:   &memo,
		Prepare: func(ctx context.Context, acc *account.Account) error {
			// 事前読み取りから状態が変わっている可能性があるため単位内で再確認する
			if !acc.Subscription().Active {
				return account.ErrSubscriptionInactive
			}

			acc.RecordDailyCredit(now)

			if acc.ShouldGrantBoost(now, plan.BoostInterval) {
				acc.GrantBoost(plan.WeeklyBoost, now)
			}
			return nil
		},
	})
	return err
}

// Activate サブスクリプションを有効化
func (s *SubscriptionApplicationService) Activate(ctx context.Context, req *ActivateRequest) error {
	ctx, span := s.tracer.Start(ctx, "SubscriptionApplicationService.Activate")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("plan_id", req.PlanID),
	)

	if _, err := s.catalog.Plan(req.PlanID); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	acc, err := s.accountRepo.FindByUserID(ctx, req.UserID)
	if err == account.ErrAccountNotFound {
		acc, err = account.NewEmptyAccount(req.UserID)
		if err != nil {
			return err
		}
		acc.ActivateSubscription()
		if err := s.accountRepo.Create(ctx, acc); err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return err
		}
		span.SetStatus(otelcodes.Ok, "subscription activated")
		return nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	acc.ActivateSubscription()
	if err := s.accountRepo.Save(ctx, acc); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	s.logger.Info(ctx, "Subscription activated", map[string]interface{}{
		"user_id": req.UserID,
		"plan_id": req.PlanID,
	})
	span.SetStatus(otelcodes.Ok, "subscription activated")
	return nil
}

// Deactivate サブスクリプションを無効化
func (s *SubscriptionApplicationService) Deactivate(ctx context.Context, req *DeactivateRequest) error {
	ctx, span := s.tracer.Start(ctx, "SubscriptionApplicationService.Deactivate")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", req.UserID))

	acc, err := s.accountRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	acc.DeactivateSubscription()
	if err := s.accountRepo.Save(ctx, acc); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return err
	}

	s.logger.Info(ctx, "Subscription deactivated", map[string]interface{}{
		"user_id": req.UserID,
	})
	span.SetStatus(otelcodes.Ok, "subscription deactivated")
	return nil
}
