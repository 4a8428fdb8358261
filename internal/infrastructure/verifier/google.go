package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/purchase"
	"coin-server/internal/infrastructure/config"
)

const googlePurchaseStatePurchased = 0

// GoogleVerifier Google Play購入検証の実装
type GoogleVerifier struct {
	cfg        *config.GoogleConfig
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewGoogleVerifier 新しいGoogleVerifierを作成
func NewGoogleVerifier(cfg *config.GoogleConfig) *GoogleVerifier {
	return &GoogleVerifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tracer:     otel.Tracer("google-verifier"),
	}
}

// googlePurchaseResponse Android Publisher APIのレスポンス
type googlePurchaseResponse struct {
	PurchaseState int    `json:"purchaseState"`
	OrderID       string `json:"orderId"`
}

// Verify Android Publisher APIに問い合わせて購入トークンを検証する
// 購入IDには購入トークン自体を採用し、同一トークンの再送を冪等化する
func (v *GoogleVerifier) Verify(ctx context.Context, req purchase.VerifyRequest) (*purchase.VerifyResult, error) {
	ctx, span := v.tracer.Start(ctx, "GoogleVerifier.Verify")
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

	url := fmt.Sprintf("%s/androidpublisher/v3/applications/%s/purchases/products/%s/tokens/%s",
		v.cfg.APIBaseURL,
		v.cfg.PackageName,
		req.BundleID,
		req.PurchaseToken,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+v.cfg.AccessToken)

	httpResp, err := v.httpClient.Do(httpReq)
	if err != nil {
		verr := fmt.Errorf("%w: %v", purchase.ErrReceiptInvalid, err)
		span.RecordError(verr)
		span.SetStatus(otelcodes.Error, verr.Error())
		return nil, verr
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		verr := fmt.Errorf("%w: google responded with %d", purchase.ErrReceiptInvalid, httpResp.StatusCode)
		span.RecordError(verr)
		span.SetStatus(otelcodes.Error, verr.Error())
		return nil, verr
	}

	var resp googlePurchaseResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		verr := fmt.Errorf("%w: failed to decode response: %v", purchase.ErrReceiptInvalid, err)
		span.RecordError(verr)
		span.SetStatus(otelcodes.Error, verr.Error())
		return nil, verr
	}

	if resp.PurchaseState != googlePurchaseStatePurchased {
		verr := fmt.Errorf("%w: purchase state %d", purchase.ErrReceiptInvalid, resp.PurchaseState)
		span.RecordError(verr)
		span.SetStatus(otelcodes.Error, verr.Error())
		return nil, verr
	}

	span.SetAttributes(attribute.String("purchase_id", req.PurchaseToken))
	span.SetStatus(otelcodes.Ok, "purchase verified")

	return &purchase.VerifyResult{
		PurchaseID: req.PurchaseToken,
		Coins:      req.Coins,
		Price:      req.Price,
		Currency:   req.Currency,
	}, nil
}
