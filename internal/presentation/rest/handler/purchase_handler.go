package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	purchaseapp "coin-server/internal/application/purchase"
)

// PurchaseHandler 購入関連ハンドラー
type PurchaseHandler struct {
	purchaseService *purchaseapp.PurchaseApplicationService
}

// NewPurchaseHandler 新しいPurchaseHandlerを作成
func NewPurchaseHandler(purchaseService *purchaseapp.PurchaseApplicationService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// VerifyPurchase 購入検証・付与ハンドラー（ユーザーAPI用）
// @Summary 購入を検証してコインを付与
// @Description ストアのレシートを検証し、成功時にコインバンドルを残高へ付与します。初回購入時はボーナスが加算されます
// @Tags purchase
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body VerifyPurchaseRequest true "購入検証リクエスト"
// @Success 200 {object} VerifyPurchaseResponse "検証・付与成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 402 {object} ErrorResponse "レシート検証失敗"
// @Failure 409 {object} ErrorResponse "処理済みの購入"
// @Router /purchases/verify [post]
func (h *PurchaseHandler) VerifyPurchase(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody VerifyPurchaseRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Platform == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "platform is required")
	}
	if reqBody.BundleID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bundle_id is required")
	}

	req := &purchaseapp.VerifyAndCreditRequest{
		UserID:        userID,
		Platform:      reqBody.Platform,
		BundleID:      reqBody.BundleID,
		PurchaseToken: reqBody.PurchaseToken,
		ReceiptData:   reqBody.ReceiptData,
	}

	resp, err := h.purchaseService.VerifyAndCredit(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, VerifyPurchaseResponse{
		TransactionID:   resp.TransactionID,
		Coins:           strconv.FormatInt(resp.Coins, 10),
		BonusCoins:      strconv.FormatInt(resp.BonusCoins, 10),
		IsFirstPurchase: resp.IsFirstPurchase,
		BalanceAfter:    strconv.FormatInt(resp.BalanceAfter, 10),
		Status:          resp.Status,
	})
}
