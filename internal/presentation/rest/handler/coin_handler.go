package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	historyapp "coin-server/internal/application/history"
	rewardapp "coin-server/internal/application/reward"
	spendapp "coin-server/internal/application/spend"
)

// CoinHandler コイン操作ハンドラー
type CoinHandler struct {
	spendService   *spendapp.SpendApplicationService
	rewardService  *rewardapp.RewardApplicationService
	historyService *historyapp.HistoryApplicationService
}

// NewCoinHandler 新しいCoinHandlerを作成
func NewCoinHandler(
	spendService *spendapp.SpendApplicationService,
	rewardService *rewardapp.RewardApplicationService,
	historyService *historyapp.HistoryApplicationService,
) *CoinHandler {
	return &CoinHandler{
		spendService:   spendService,
		rewardService:  rewardService,
		historyService: historyService,
	}
}

// GetBalance 残高取得ハンドラー（ユーザーAPI用）
// @Summary 残高を取得
// @Description 自分のコイン残高を取得します
// @Tags coin
// @Accept json
// @Produce json
// @Security Bearer
// @Success 200 {object} BalanceResponse "残高取得成功"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Router /me/balance [get]
func (h *CoinHandler) GetBalance(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	req := &historyapp.GetBalanceRequest{
		UserID: userID,
	}

	resp, err := h.historyService.GetBalance(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, BalanceResponse{
		UserID:      resp.UserID,
		CoinBalance: strconv.FormatInt(resp.CoinBalance, 10),
	})
}

// SpendCoins コイン消費ハンドラー（ユーザーAPI用）
// @Summary アクションのコインを消費
// @Description 指定されたアクションのコストを残高から消費します
// @Tags coin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SpendRequest true "コイン消費リクエスト"
// @Success 200 {object} SpendResponse "消費成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 409 {object} ErrorResponse "残高不足"
// @Router /coins/spend [post]
func (h *CoinHandler) SpendCoins(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody SpendRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if reqBody.Action == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "action is required")
	}

	req := &spendapp.SpendRequest{
		UserID:   userID,
		Action:   reqBody.Action,
		Metadata: reqBody.Metadata,
	}

	resp, err := h.spendService.Spend(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, SpendResponse{
		TransactionID: resp.TransactionID,
		Cost:          strconv.FormatInt(resp.Cost, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
		Status:        resp.Status,
	})
}

// ClaimDailyReward デイリー報酬受け取りハンドラー（ユーザーAPI用）
// @Summary デイリー報酬を受け取る
// @Description 1日1回のログイン報酬を受け取ります。同じ日に2回目以降の受け取りはできません
// @Tags coin
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ClaimRewardRequest true "報酬受け取りリクエスト"
// @Success 200 {object} ClaimRewardResponse "受け取り成功"
// @Failure 400 {object} ErrorResponse "不正なリクエスト"
// @Failure 401 {object} ErrorResponse "認証エラー"
// @Failure 409 {object} ErrorResponse "受け取り済み"
// @Router /rewards/daily [post]
func (h *CoinHandler) ClaimDailyReward(c echo.Context) error {
	// トークンからuser_idを取得
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user_id not found in token")
	}

	var reqBody ClaimRewardRequest
	if err := c.Bind(&reqBody); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req := &rewardapp.ClaimDailyRewardRequest{
		UserID:     userID,
		RewardType: reqBody.RewardType,
	}

	// コイン数の指定は任意。省略時はカタログの既定値を使用する
	if reqBody.Coins != "" {
		coins, err := strconv.ParseInt(reqBody.Coins, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid coins format")
		}
		req.Coins = &coins
	}

	resp, err := h.rewardService.ClaimDailyReward(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ClaimRewardResponse{
		TransactionID: resp.TransactionID,
		Coins:         strconv.FormatInt(resp.Coins, 10),
		BalanceAfter:  strconv.FormatInt(resp.BalanceAfter, 10),
		Status:        resp.Status,
	})
}
