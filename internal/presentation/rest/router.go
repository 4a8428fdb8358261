package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	adminapp "coin-server/internal/application/admin"
	historyapp "coin-server/internal/application/history"
	purchaseapp "coin-server/internal/application/purchase"
	rewardapp "coin-server/internal/application/reward"
	spendapp "coin-server/internal/application/spend"
	subscriptionapp "coin-server/internal/application/subscription"
	"coin-server/internal/infrastructure/config"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
	"coin-server/internal/infrastructure/persistence/mysql"
	"coin-server/internal/presentation/rest/handler"
	restmiddleware "coin-server/internal/presentation/rest/middleware"
)

// Router REST APIルーター
type Router struct {
	echo            *echo.Echo
	purchaseHandler *handler.PurchaseHandler
	coinHandler     *handler.CoinHandler
	historyHandler  *handler.HistoryHandler
	adminHandler    *handler.AdminHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	db *mysql.DB,
	purchaseService *purchaseapp.PurchaseApplicationService,
	spendService *spendapp.SpendApplicationService,
	rewardService *rewardapp.RewardApplicationService,
	subscriptionService *subscriptionapp.SubscriptionApplicationService,
	adminService *adminapp.AdminApplicationService,
	historyService *historyapp.HistoryApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	purchaseHandler := handler.NewPurchaseHandler(purchaseService)
	coinHandler := handler.NewCoinHandler(spendService, rewardService, historyService)
	historyHandler := handler.NewHistoryHandler(historyService)
	adminHandler := handler.NewAdminHandler(adminService, subscriptionService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, db, purchaseHandler, coinHandler, historyHandler, adminHandler)

	return &Router{
		echo:            e,
		purchaseHandler: purchaseHandler,
		coinHandler:     coinHandler,
		historyHandler:  historyHandler,
		adminHandler:    adminHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダーミドルウェア
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	db *mysql.DB,
	purchaseHandler *handler.PurchaseHandler,
	coinHandler *handler.CoinHandler,
	historyHandler *handler.HistoryHandler,
	adminHandler *handler.AdminHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// 認証が必要なエンドポイント
	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	// 購入関連エンドポイント
	authGroup.POST("/purchases/verify", purchaseHandler.VerifyPurchase)

	// コイン関連エンドポイント
	authGroup.POST("/coins/spend", coinHandler.SpendCoins)
	authGroup.POST("/rewards/daily", coinHandler.ClaimDailyReward)

	// 残高・履歴関連エンドポイント
	authGroup.GET("/me/balance", coinHandler.GetBalance)
	authGroup.GET("/me/transactions", historyHandler.GetTransactionHistory)

	// 管理APIエンドポイント（認証に加えて管理者権限が必要）
	adminGroup := authGroup.Group("/admin", restmiddleware.AdminOnlyMiddleware(logger))
	adminGroup.POST("/users/:user_id/adjust", adminHandler.AdjustBalance)
	adminGroup.GET("/users/:user_id/transactions", historyHandler.GetTransactionHistoryAdmin)
	adminGroup.POST("/users/:user_id/subscription/activate", adminHandler.ActivateSubscription)
	adminGroup.POST("/users/:user_id/subscription/deactivate", adminHandler.DeactivateSubscription)

	// 内部APIエンドポイント（APIキー認証）
	internalGroup := api.Group("/internal", restmiddleware.APIKeyMiddleware(cfg.Server.APIKey, logger))
	internalGroup.POST("/subscriptions/sweep", adminHandler.TriggerSweep)

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		if err := db.HealthCheck(); err != nil {
			return c.JSON(503, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
