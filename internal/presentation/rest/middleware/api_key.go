package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"

	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// APIKeyMiddleware 内部API向けのAPIキー認証ミドルウェア
// スイープの手動トリガーなど、ユーザー文脈を持たない運用系エンドポイントで使用する
func APIKeyMiddleware(apiKey string, logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			// APIキーが未設定の場合はエンドポイント自体を無効化する
			if apiKey == "" {
				logger.Warn(ctx, "Internal API is disabled", nil)
				return c.JSON(http.StatusForbidden, ErrorResponse{
					Error:   "forbidden",
					Message: "Internal API is disabled",
				})
			}

			// X-API-KeyヘッダーからAPIキーを取得
			provided := c.Request().Header.Get("X-API-Key")
			if provided == "" {
				logger.Warn(ctx, "Missing X-API-Key header", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Missing X-API-Key header",
				})
			}

			// APIキーの検証
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.Warn(ctx, "Invalid API key", nil)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "Invalid API key",
				})
			}

			// 次のハンドラーを実行
			return next(c)
		}
	}
}
