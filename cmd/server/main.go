package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminapp "coin-server/internal/application/admin"
	fraudapp "coin-server/internal/application/fraud"
	historyapp "coin-server/internal/application/history"
	purchaseapp "coin-server/internal/application/purchase"
	rewardapp "coin-server/internal/application/reward"
	spendapp "coin-server/internal/application/spend"
	subscriptionapp "coin-server/internal/application/subscription"
	"coin-server/internal/domain/service"
	"coin-server/internal/infrastructure/config"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
	"coin-server/internal/infrastructure/persistence/mysql"
	"coin-server/internal/infrastructure/scheduler"
	"coin-server/internal/infrastructure/verifier"
	"coin-server/internal/presentation/rest"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// OpenTelemetryの初期化
	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	// ロガーとメトリクスの初期化
	tracer := otelinfra.Tracer("coin-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("coin-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	// データベース接続の初期化
	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// カタログの読み込み
	cat, err := config.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	// リポジトリの初期化
	accountRepo := mysql.NewAccountRepository(db)
	transactionRepo := mysql.NewTransactionRepository(db)
	purchaseRepo := mysql.NewPurchaseRepository(db)
	actionLogRepo := mysql.NewActionLogRepository(db)
	auditRepo := mysql.NewAuditRepository(db)

	// トランザクションマネージャーの初期化
	txManager := mysql.NewTransactionManager(db)

	// 台帳エンジンの初期化
	ledgerEngine := service.NewLedgerEngine(accountRepo, transactionRepo, txManager)

	// 不正検知モニターの初期化と購読登録
	fraudMonitor := fraudapp.NewMonitor(auditRepo, cat.FraudCreditThreshold(), logger, metrics)
	ledgerEngine.Subscribe(fraudMonitor)
	fraudMonitor.Start()
	defer fraudMonitor.Stop()

	// レシート検証機の初期化
	verifierResolver := verifier.NewResolver(
		verifier.NewAppleVerifier(&cfg.Apple),
		verifier.NewGoogleVerifier(&cfg.Google),
		verifier.NewMidtransVerifier(&cfg.Midtrans),
	)

	// スイープのタイムゾーン
	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}

	// アプリケーションサービスの初期化
	purchaseAppService := purchaseapp.NewPurchaseApplicationService(
		purchaseRepo,
		verifierResolver,
		ledgerEngine,
		cat,
		logger,
		metrics,
	)

	spendAppService := spendapp.NewSpendApplicationService(
		actionLogRepo,
		ledgerEngine,
		cat,
		logger,
		metrics,
	)

	rewardAppService := rewardapp.NewRewardApplicationService(
		ledgerEngine,
		cat,
		location,
		logger,
		metrics,
	)

	subscriptionAppService := subscriptionapp.NewSubscriptionApplicationService(
		accountRepo,
		ledgerEngine,
		cat,
		logger,
		metrics,
	)

	adminAppService := adminapp.NewAdminApplicationService(
		auditRepo,
		ledgerEngine,
		logger,
		metrics,
	)

	historyAppService := historyapp.NewHistoryApplicationService(
		accountRepo,
		transactionRepo,
		logger,
		metrics,
	)

	// デイリースイープスケジューラーの初期化
	if cfg.Scheduler.SweepEnabled {
		sweepScheduler, err := scheduler.NewSweepScheduler(
			&cfg.Scheduler,
			func(ctx context.Context) error {
				_, err := subscriptionAppService.Sweep(ctx)
				return err
			},
			logger,
		)
		if err != nil {
			log.Fatalf("Failed to create sweep scheduler: %v", err)
		}
		sweepScheduler.Start()
		defer sweepScheduler.Stop()
	}

	// REST APIルーターの初期化
	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		db,
		purchaseAppService,
		spendAppService,
		rewardAppService,
		subscriptionAppService,
		adminAppService,
		historyAppService,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	// サーバーアドレスの設定
	address := fmt.Sprintf(":%d", cfg.Server.Port)

	// グレースフルシャットダウンの設定
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// REST APIサーバーを別ゴルーチンで起動
	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	// シグナルを待機
	<-quit
	log.Println("Shutting down server...")

	// REST APIサーバーのシャットダウン
	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
