package fraud

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-server/internal/domain/audit"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// monitorQueueSize 検査待ちトランザクションのバッファ長
const monitorQueueSize = 256

// Monitor 不正検知モニター
// コミット済みトランザクションを非同期に検査し、閾値を超える加算に
// フラグを付ける。観測のみを行い、元のトランザクションを妨げることはない
type Monitor struct {
	auditRepo audit.AuditRepository
	threshold int64
	logger    *otelinfra.Logger
	metrics   *otelinfra.Metrics
	tracer    trace.Tracer

	queue chan *transaction.Transaction
	wg    sync.WaitGroup
	once  sync.Once
}

// NewMonitor 新しいMonitorを作成
func NewMonitor(
	auditRepo audit.AuditRepository,
	threshold int64,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
) *Monitor {
	return &Monitor{
		auditRepo: auditRepo,
		threshold: threshold,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer("fraud-monitor"),
		queue:     make(chan *transaction.Transaction, monitorQueueSize),
	}
}

// Start 検査ワーカーを起動
func (m *Monitor) Start() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for txn := range m.queue {
			m.inspect(txn)
		}
	}()
}

// Stop 受付を締め切り、処理中の検査が終わるまで待つ
func (m *Monitor) Stop() {
	m.once.Do(func() {
		close(m.queue)
	})
	m.wg.Wait()
}

// OnTransaction コミット済みトランザクションの通知を受け取る
// キューが満杯の場合は破棄する（台帳処理をブロックしない）
func (m *Monitor) OnTransaction(txn *transaction.Transaction) {
	select {
	case m.queue <- txn:
	default:
		m.logger.Warn(context.Background(), "Fraud monitor queue full, dropping transaction", map[string]interface{}{
			"transaction_id": txn.TransactionID(),
		})
	}
}

// inspect 1件のトランザクションを検査
// 閾値を超える加算1件につきフラグを最大1件だけ作成する
func (m *Monitor) inspect(txn *transaction.Transaction) {
	ctx, span := m.tracer.Start(context.Background(), "Monitor.inspect")
	defer span.End()

	if !txn.TransactionType().IsCredit() || txn.Amount() <= m.threshold {
		span.SetStatus(otelcodes.Ok, "not flagged")
		return
	}

	flag, err := audit.NewFraudFlag(
		fmt.Sprintf("flg_%s", uuid.NewString()),
		txn.UserID(),
		txn.TransactionID(),
		txn.Amount(),
		m.threshold,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		m.logger.Error(ctx, "Failed to build fraud flag", err, map[string]interface{}{
			"transaction_id": txn.TransactionID(),
		})
		return
	}

	if err := m.auditRepo.SaveFraudFlag(ctx, flag); err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		m.logger.Error(ctx, "Failed to save fraud flag", err, map[string]interface{}{
			"transaction_id": txn.TransactionID(),
			"user_id":        txn.UserID(),
		})
		return
	}

	m.metrics.RecordFraudFlag(ctx, txn.UserID())
	m.logger.Warn(ctx, "Fraud flag created", map[string]interface{}{
		"flag_id":        flag.FlagID(),
		"user_id":        txn.UserID(),
		"transaction_id": txn.TransactionID(),
		"amount":         txn.Amount(),
		"threshold":      m.threshold,
	})
	span.SetStatus(otelcodes.Ok, "flagged")
}
