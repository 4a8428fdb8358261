package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics メトリクス定義
type Metrics struct {
	// トランザクション数
	TransactionCount metric.Int64Counter

	// コイン残高の分布
	CoinBalance metric.Int64Gauge

	// 購入検証数
	PurchaseCount metric.Int64Counter

	// 不正検知フラグ数
	FraudFlagCount metric.Int64Counter

	// サブスクリプション付与処理件数
	SweepAccountCount metric.Int64Counter

	// リクエスト数
	RequestCount metric.Int64Counter

	// レスポンス時間
	ResponseTime metric.Float64Histogram

	// エラー率
	ErrorCount metric.Int64Counter
}

// NewMetrics 新しいMetricsを作成
func NewMetrics(meterName string) (*Metrics, error) {
	meter := otel.Meter(meterName)

	transactionCount, err := meter.Int64Counter(
		"coin_transactions_total",
		metric.WithDescription("Total number of coin transactions"),
	)
	if err != nil {
		return nil, err
	}

	coinBalance, err := meter.Int64Gauge(
		"coin_balance",
		metric.WithDescription("Coin balance"),
	)
	if err != nil {
		return nil, err
	}

	purchaseCount, err := meter.Int64Counter(
		"coin_purchases_total",
		metric.WithDescription("Total number of verified coin purchases"),
	)
	if err != nil {
		return nil, err
	}

	fraudFlagCount, err := meter.Int64Counter(
		"fraud_flags_total",
		metric.WithDescription("Total number of fraud flags"),
	)
	if err != nil {
		return nil, err
	}

	sweepAccountCount, err := meter.Int64Counter(
		"subscription_sweep_accounts_total",
		metric.WithDescription("Total number of accounts processed by subscription sweep"),
	)
	if err != nil {
		return nil, err
	}

	requestCount, err := meter.Int64Counter(
		"requests_total",
		metric.WithDescription("Total number of requests"),
	)
	if err != nil {
		return nil, err
	}

	responseTime, err := meter.Float64Histogram(
		"response_time_seconds",
		metric.WithDescription("Response time in seconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"errors_total",
		metric.WithDescription("Total number of errors"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		TransactionCount:  transactionCount,
		CoinBalance:       coinBalance,
		PurchaseCount:     purchaseCount,
		FraudFlagCount:    fraudFlagCount,
		SweepAccountCount: sweepAccountCount,
		RequestCount:      requestCount,
		ResponseTime:      responseTime,
		ErrorCount:        errorCount,
	}, nil
}

// RecordTransaction トランザクションを記録
func (m *Metrics) RecordTransaction(ctx context.Context, transactionType, reason string) {
	m.TransactionCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("transaction_type", transactionType),
			attribute.String("reason", reason),
		),
	)
}

// RecordCoinBalance コイン残高を記録
func (m *Metrics) RecordCoinBalance(ctx context.Context, userID string, balance int64) {
	m.CoinBalance.Record(ctx, balance,
		metric.WithAttributes(
			attribute.String("user_id", userID),
		),
	)
}

// RecordPurchase 購入検証を記録
func (m *Metrics) RecordPurchase(ctx context.Context, platform, bundleID string) {
	m.PurchaseCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", platform),
			attribute.String("bundle_id", bundleID),
		),
	)
}

// RecordFraudFlag 不正検知フラグを記録
func (m *Metrics) RecordFraudFlag(ctx context.Context, userID string) {
	m.FraudFlagCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("user_id", userID),
		),
	)
}

// RecordSweepAccount サブスクリプション付与処理を記録
func (m *Metrics) RecordSweepAccount(ctx context.Context, result string) {
	m.SweepAccountCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("result", result),
		),
	)
}

// RecordRequest リクエストを記録
func (m *Metrics) RecordRequest(ctx context.Context, method, path string) {
	m.RequestCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordResponseTime レスポンス時間を記録
func (m *Metrics) RecordResponseTime(ctx context.Context, method, path string, duration float64) {
	m.ResponseTime.Record(ctx, duration,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("path", path),
		),
	)
}

// RecordError エラーを記録
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	m.ErrorCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error_type", errorType),
		),
	)
}
