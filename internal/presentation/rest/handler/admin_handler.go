package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	adminapp "coin-server/internal/application/admin"
	subscriptionapp "coin-server/internal/application/subscription"
)

// AdminHandler 管理API用ハンドラー
type AdminHandler struct {
	adminService        *adminapp.AdminApplicationService
	subscriptionService *subscriptionapp.SubscriptionApplicationService
}

// NewAdminHandler 新しいAdminHandlerを作成
func NewAdminHandler(
	adminService *adminapp.AdminApplicationService,
	subscriptionService *subscriptionapp.SubscriptionApplicationService,
) *AdminHandler {
	return &AdminHandler{
		adminService:        adminService,
		subscriptionService: subscriptionService,
	}
}

// AdjustBalance 残高調整ハンドラー（管理API用）
// @Summary 残高を調整（管理API）
// @Description 指定されたユーザーの残高を調整します。正の値は加算、負の値は減算です
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param user_id path string true "ユーザーID" example(user123)
// @Param request body AdjustBalanceRequest true "残高調整リクエスト"
// @Success 200 {object} AdjustBalanceResponse "調整成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 403 {object} ErrorResponse "権限エラー"
// @Failure 409 {object} ErrorResponse "残高不足"
// @Router /admin/users/{user_id}/adjust [post]
func (h *AdminHandler) AdjustBalance(c echo.Context) error {
	// トークンから操作者のIDを取得
	adminID, ok := c.Get("user_id").(string)
	if !ok || adminID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	targetUserID := c.Param("user_id")
	if targetUserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody AdjustBalanceRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Reason == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reason is required")
	}

	// 金額をint64に変換（符号付き）
	amount, err := strconv.ParseInt(reqBody.Amount, 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid amount format")
	}

	req := &adminapp.AdjustBalanceRequest{
		AdminID:      adminID,
		TargetUserID: targetUserID,
		Amount:       amount,
		Reason:       reqBody.Reason,
	}

	resp, err := h.adminService.AdjustBalance(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AdjustBalanceResponse{
		TransactionID: resp.TransactionID,
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
		Status:        resp.Status,
	})
}

// ActivateSubscription サブスクリプション有効化ハンドラー（管理API用）
// @Summary サブスクリプションを有効化（管理API）
// @Description 指定されたユーザーのサブスクリプションを有効化します
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param user_id path string true "ユーザーID" example(user123)
// @Param request body ActivateSubscriptionRequest true "有効化リクエスト"
// @Success 200 {object} SubscriptionStatusResponse "有効化成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /admin/users/{user_id}/subscription/activate [post]
func (h *AdminHandler) ActivateSubscription(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	var reqBody ActivateSubscriptionRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &subscriptionapp.ActivateRequest{
		UserID: userID,
		PlanID: reqBody.PlanID,
	}

	if err := h.subscriptionService.Activate(c.Request().Context(), req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SubscriptionStatusResponse{
		UserID: userID,
		Active: true,
	})
}

// DeactivateSubscription サブスクリプション無効化ハンドラー（管理API用）
// @Summary サブスクリプションを無効化（管理API）
// @Description 指定されたユーザーのサブスクリプションを無効化します
// @Tags admin
// @Accept json
// @Produce json
// @Security Bearer
// @Param user_id path string true "ユーザーID" example(user123)
// @Success 200 {object} SubscriptionStatusResponse "無効化成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 404 {object} ErrorResponse "アカウントが存在しない"
// @Router /admin/users/{user_id}/subscription/deactivate [post]
func (h *AdminHandler) DeactivateSubscription(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	req := &subscriptionapp.DeactivateRequest{
		UserID: userID,
	}

	if err := h.subscriptionService.Deactivate(c.Request().Context(), req); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SubscriptionStatusResponse{
		UserID: userID,
		Active: false,
	})
}

// TriggerSweep サブスクリプション付与バッチの手動トリガー（内部API用）
// @Summary サブスクリプション付与バッチを実行（内部API）
// @Description 有効なサブスクリプション全員にデイリーコインを付与します。通常はスケジューラーから実行されます
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "APIキー"
// @Success 200 {object} SweepResponse "バッチ実行完了"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /internal/subscriptions/sweep [post]
func (h *AdminHandler) TriggerSweep(c echo.Context) error {
	resp, err := h.subscriptionService.Sweep(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SweepResponse{
		Processed: resp.Processed,
		Succeeded: resp.Succeeded,
		Failed:    resp.Failed,
	})
}
