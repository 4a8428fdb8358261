package verifier

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/purchase"
	"coin-server/internal/infrastructure/config"
)

// MidtransVerifier Web決済（Midtrans）検証の実装
// 購入トークンをMidtransの注文IDとして照会し、決済完了を確認する
type MidtransVerifier struct {
	client coreapi.Client
	tracer trace.Tracer
}

// NewMidtransVerifier 新しいMidtransVerifierを作成
func NewMidtransVerifier(cfg *config.MidtransConfig) *MidtransVerifier {
	env := midtrans.Sandbox
	if cfg.Environment == "production" {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(cfg.ServerKey, env)

	return &MidtransVerifier{
		client: client,
		tracer: otel.Tracer("midtrans-verifier"),
	}
}

// Verify Midtransに注文の決済状態を照会して購入を検証する
func (v *MidtransVerifier) Verify(ctx context.Context, req purchase.VerifyRequest) (*purchase.VerifyResult, error) {
	_, span := v.tracer.Start(ctx, "MidtransVerifier.Verify")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("bundle_id", req.BundleID),
	)

	if req.PurchaseToken == "" {
		err := purchase.ErrReceiptMissing
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	resp, mErr := v.client.CheckTransaction(req.PurchaseToken)
	if mErr != nil {
		err := fmt.Errorf("%w: %v", purchase.ErrReceiptInvalid, mErr)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	switch resp.TransactionStatus {
	case "capture", "settlement":
		// 決済完了
	default:
		err := fmt.Errorf("%w: transaction status %s", purchase.ErrReceiptInvalid, resp.TransactionStatus)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("purchase_id", resp.OrderID))
	span.SetStatus(otelcodes.Ok, "transaction verified")

	return &purchase.VerifyResult{
		PurchaseID: resp.OrderID,
		Coins:      req.Coins,
		Price:      req.Price,
		Currency:   req.Currency,
	}, nil
}
