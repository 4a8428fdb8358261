package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/purchase"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// ErrorResponse エラーレスポンス
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// domainErrorMapping ドメインエラーとHTTPレスポンスの対応
type domainErrorMapping struct {
	err        error
	statusCode int
	errorCode  string
	logMessage string
}

// domainErrorMappings ドメインエラーの対応表
// 判定は上から順に行われる
var domainErrorMappings = []domainErrorMapping{
	{account.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance", "Insufficient balance"},
	{account.ErrRewardAlreadyClaimed, http.StatusConflict, "reward_already_claimed", "Reward already claimed"},
	{account.ErrRewardInvalidType, http.StatusBadRequest, "invalid_reward_type", "Invalid reward type"},
	{account.ErrSubscriptionInactive, http.StatusConflict, "subscription_inactive", "Subscription inactive"},
	{account.ErrVersionConflict, http.StatusConflict, "version_conflict", "Version conflict"},
	{account.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Invalid amount"},
	{account.ErrAmountTooLarge, http.StatusBadRequest, "amount_too_large", "Amount too large"},
	{account.ErrBalanceOutOfRange, http.StatusConflict, "balance_out_of_range", "Balance out of range"},
	{account.ErrInvalidUserID, http.StatusBadRequest, "invalid_user_id", "Invalid user ID"},
	{account.ErrAccountNotFound, http.StatusNotFound, "account_not_found", "Account not found"},
	{purchase.ErrAlreadyProcessed, http.StatusConflict, "already_processed", "Purchase already processed"},
	{purchase.ErrReceiptInvalid, http.StatusPaymentRequired, "receipt_invalid", "Receipt invalid"},
	{purchase.ErrReceiptMissing, http.StatusBadRequest, "receipt_missing", "Receipt missing"},
	{purchase.ErrUnsupportedPlatform, http.StatusBadRequest, "unsupported_platform", "Unsupported platform"},
	{purchase.ErrPurchaseNotFound, http.StatusNotFound, "purchase_not_found", "Purchase not found"},
	{catalog.ErrUnknownBundle, http.StatusBadRequest, "unknown_bundle", "Unknown bundle"},
	{catalog.ErrUnsupportedAction, http.StatusBadRequest, "unsupported_action", "Unsupported action"},
	{catalog.ErrUnknownPlan, http.StatusBadRequest, "unknown_plan", "Unknown plan"},
	{transaction.ErrTransactionNotFound, http.StatusNotFound, "transaction_not_found", "Transaction not found"},
	{transaction.ErrInvalidReason, http.StatusBadRequest, "invalid_reason", "Invalid reason"},
	{transaction.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Invalid amount"},
}

// ErrorHandlerMiddleware エラーハンドリングミドルウェア
func ErrorHandlerMiddleware(logger *otelinfra.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			// エラーハンドリング
			return handleError(c, err, logger)
		}
	}
}

// handleError エラーを処理して適切なHTTPレスポンスを返す
func handleError(c echo.Context, err error, logger *otelinfra.Logger) error {
	ctx := c.Request().Context()

	// ドメインエラーの判定と処理
	for _, mapping := range domainErrorMappings {
		if errors.Is(err, mapping.err) {
			logger.Warn(ctx, mapping.logMessage, map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(mapping.statusCode, ErrorResponse{
				Error:   mapping.errorCode,
				Message: err.Error(),
			})
		}
	}

	// EchoのHTTPエラー
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		logger.Warn(ctx, "HTTP error", map[string]interface{}{
			"status_code": httpErr.Code,
			"message":     httpErr.Message,
		})
		message := ""
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(httpErr.Code)
		}
		return c.JSON(httpErr.Code, ErrorResponse{
			Error:   http.StatusText(httpErr.Code),
			Message: message,
		})
	}

	// 予期しないエラー
	logger.Error(ctx, "Internal server error", err, map[string]interface{}{
		"path": c.Request().URL.Path,
	})
	return c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_server_error",
		Message: "An unexpected error occurred",
	})
}
