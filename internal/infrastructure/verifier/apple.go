package verifier

import (
	"bytes"
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

const (
	appleStatusOK             = 0
	appleStatusSandboxReceipt = 21007
)

// AppleVerifier App Storeレシート検証の実装
type AppleVerifier struct {
	cfg        *config.AppleConfig
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewAppleVerifier 新しいAppleVerifierを作成
func NewAppleVerifier(cfg *config.AppleConfig) *AppleVerifier {
	return &AppleVerifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		tracer:     otel.Tracer("apple-verifier"),
	}
}

// appleVerifyRequest verifyReceipt APIリクエスト
type appleVerifyRequest struct {
	ReceiptData string `json:"receipt-data"`
	Password    string `json:"password,omitempty"`
}

// appleVerifyResponse verifyReceipt APIレスポンス
type appleVerifyResponse struct {
	Status  int `json:"status"`
	Receipt struct {
		InApp []struct {
			TransactionID string `json:"transaction_id"`
			ProductID     string `json:"product_id"`
		} `json:"in_app"`
	} `json:"receipt"`
}

// Verify App Storeにレシートを送信して購入を検証する
// 本番環境のレシートを先に試し、サンドボックスレシートの場合は
// サンドボックス環境で再検証する（Appleの推奨フロー）
func (v *AppleVerifier) Verify(ctx context.Context, req purchase.VerifyRequest) (*purchase.VerifyResult, error) {
	ctx, span := v.tracer.Start(ctx, "AppleVerifier.Verify")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("bundle_id", req.BundleID),
	)

	if req.ReceiptData == "" {
		err := purchase.ErrReceiptMissing
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	resp, err := v.verifyAt(ctx, v.cfg.VerifyURL, req.ReceiptData)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if resp.Status == appleStatusSandboxReceipt {
		resp, err = v.verifyAt(ctx, v.cfg.SandboxVerifyURL, req.ReceiptData)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(otelcodes.Error, err.Error())
			return nil, err
		}
	}

	if resp.Status != appleStatusOK {
		err := fmt.Errorf("%w: apple status %d", purchase.ErrReceiptInvalid, resp.Status)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	if len(resp.Receipt.InApp) == 0 {
		err := fmt.Errorf("%w: no in-app purchase in receipt", purchase.ErrReceiptInvalid)
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return nil, err
	}

	// レシート内の最新のトランザクションを購入IDとして採用する
	transactionID := resp.Receipt.InApp[len(resp.Receipt.InApp)-1].TransactionID

	span.SetAttributes(attribute.String("purchase_id", transactionID))
	span.SetStatus(otelcodes.Ok, "receipt verified")

	return &purchase.VerifyResult{
		PurchaseID: transactionID,
		Coins:      req.Coins,
		Price:      req.Price,
		Currency:   req.Currency,
	}, nil
}

// verifyAt 指定URLのverifyReceipt APIを呼び出す
func (v *AppleVerifier) verifyAt(ctx context.Context, url, receiptData string) (*appleVerifyResponse, error) {
	body, err := json.Marshal(appleVerifyRequest{
		ReceiptData: receiptData,
		Password:    v.cfg.SharedSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := v.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", purchase.ErrReceiptInvalid, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: apple responded with %d", purchase.ErrReceiptInvalid, httpResp.StatusCode)
	}

	var resp appleVerifyResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", purchase.ErrReceiptInvalid, err)
	}

	return &resp, nil
}
