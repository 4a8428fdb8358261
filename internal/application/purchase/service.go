package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/purchase"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// PurchaseApplicationService 購入検証・付与アプリケーションサービス
type PurchaseApplicationService struct {
	purchaseRepo purchase.PurchaseRepository
	resolver     purchase.VerifierResolver
	ledgerEngine *service.LedgerEngine
	catalog      *catalog.Catalog
	logger       *otelinfra.Logger
	metrics      *otelinfra.Metrics
	tracer       trace.Tracer
}

// NewPurchaseApplicationService 新しいPurchaseApplicationServiceを作成
func NewPurchaseApplicationService(
	purchaseRepo purchase.PurchaseRepository,
	resolver purchase.VerifierResolver,
	ledgerEngine *service.LedgerEngine,
	cat *catalog.Catalog,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *PurchaseApplicationService {
	return &PurchaseApplicationService{
		purchaseRepo: purchaseRepo,
		resolver:     resolver,
		ledgerEngine: ledgerEngine,
		catalog:      cat,
		logger:       logger,
		metrics:      metrics,
		tracer:       otel.Tracer("purchase-service"),
	}
}

// VerifyAndCredit 購入を検証してコインを付与
// ストアAPIへの問い合わせはアトミック単位の外側で行い、
// 最終的なコミット判断（冪等性の再検証）のみをトランザクション内で行う
func (s *PurchaseApplicationService) VerifyAndCredit(ctx context.Context, req *VerifyAndCreditRequest) (*VerifyAndCreditResponse, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseApplicationService.VerifyAndCredit")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("platform", req.Platform),
		attribute.String("bundle_id", req.BundleID),
	)

	s.logger.Info(ctx, "Verifying purchase", map[string]interface{}{
		"user_id":   req.UserID,
		"platform":  req.Platform,
		"bundle_id": req.BundleID,
	})

	// バリデーション
	bundle, err := s.catalog.Bundle(req.BundleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	platform, err := purchase.NewPlatform(req.Platform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	verifier, err := s.resolver.Resolve(platform)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// ストア検証（外部通信、ロック外）
	verifyResult, err := verifier.Verify(ctx, purchase.VerifyRequest{
		UserID:        req.UserID,
		Platform:      platform,
		BundleID:      req.BundleID,
		PurchaseToken: req.PurchaseToken,
		ReceiptData:   req.ReceiptData,
		Coins:         bundle.Coins,
		Price:         bundle.Price,
		Currency:      bundle.Currency,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Purchase verification failed", err, map[string]interface{}{
			"user_id":   req.UserID,
			"platform":  req.Platform,
			"bundle_id": req.BundleID,
		})
		s.metrics.RecordError(ctx, "purchase_verify_failed")
		return nil, err
	}

	span.SetAttributes(attribute.String("purchase_id", verifyResult.PurchaseID))

	// 初回購入判定（ロック外の事前読み取り、コミット時に冪等性を再検証する）
	hasVerified, err := s.purchaseRepo.HasVerifiedPurchase(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to check first purchase: %w", err)
	}
	isFirstPurchase := !hasVerified

	var bonusCoins int64
	if isFirstPurchase {
		bonusCoins = bundle.FirstPurchaseBonus()
	}
	totalCoins := bundle.Coins + bonusCoins

	memo := fmt.Sprintf("%s:%s", platform.String(), req.BundleID)

	var committed *purchase.Purchase
	result, err := s.ledgerEngine.Apply(ctx, service.ApplyRequest{
		UserID: req.UserID,
		Type:   transaction.TransactionTypeCredit,
		Amount: totalCoins,
		Reason: transaction.ReasonPurchase,
		Memo:   &memo,
		Metadata: map[string]interface{}{
			"purchase_id": verifyResult.PurchaseID,
			"bundle_id":   req.BundleID,
		},
		Prepare: func(ctx context.Context, acc *account.Account) error {
			// 購入レコードを単位内で再読み取りし、二重付与を防ぐ
			p, err := s.purchaseRepo.FindByPurchaseID(ctx, verifyResult.PurchaseID)
			if errors.Is(err, purchase.ErrPurchaseNotFound) {
				p, err = purchase.NewPurchase(
					verifyResult.PurchaseID,
					req.UserID,
					platform,
					req.BundleID,
					verifyResult.Price,
					verifyResult.Currency,
				)
				if err != nil {
					return err
				}
			} else if err != nil {
				return fmt.Errorf("failed to find purchase: %w", err)
			}

			if err := p.Verify(totalCoins, bonusCoins, time.Now()); err != nil {
				return err
			}

			if err := s.purchaseRepo.Save(ctx, p); err != nil {
				return fmt.Errorf("failed to save purchase: %w", err)
			}

			committed = p
			return nil
		},
	})

	if err != nil {
		if errors.Is(err, purchase.ErrAlreadyProcessed) {
			span.SetStatus(otelcodes.Ok, "purchase already processed")
			s.logger.Info(ctx, "Purchase already processed", map[string]interface{}{
				"user_id":     req.UserID,
				"purchase_id": verifyResult.PurchaseID,
			})
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		s.logger.Error(ctx, "Failed to credit purchase", err, map[string]interface{}{
			"user_id":     req.UserID,
			"purchase_id": verifyResult.PurchaseID,
		})
		s.metrics.RecordError(ctx, "purchase_credit_failed")
		return nil, err
	}

	// コミット後に永続レシートとして再保存（冪等なupsert、created_atは維持）
	if err := s.purchaseRepo.Save(ctx, committed); err != nil {
		s.logger.Warn(ctx, "Failed to persist purchase receipt after commit", map[string]interface{}{
			"user_id":     req.UserID,
			"purchase_id": committed.PurchaseID(),
			"error":       err.Error(),
		})
	}

	// メトリクス記録
	s.metrics.RecordPurchase(ctx, platform.String(), req.BundleID)
	s.metrics.RecordTransaction(ctx, "credit", transaction.ReasonPurchase.String())
	s.metrics.RecordCoinBalance(ctx, req.UserID, result.BalanceAfter)

	s.logger.Info(ctx, "Purchase credited successfully", map[string]interface{}{
		"user_id":           req.UserID,
		"purchase_id":       committed.PurchaseID(),
		"transaction_id":    result.TransactionID,
		"coins":             totalCoins,
		"bonus_coins":       bonusCoins,
		"is_first_purchase": isFirstPurchase,
	})

	return &VerifyAndCreditResponse{
		TransactionID:   result.TransactionID,
		Coins:           totalCoins,
		BonusCoins:      bonusCoins,
		IsFirstPurchase: isFirstPurchase,
		BalanceAfter:    result.BalanceAfter,
		Status:          "completed",
	}, nil
}
