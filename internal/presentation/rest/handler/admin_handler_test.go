package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	adminapp "coin-server/internal/application/admin"
	subscriptionapp "coin-server/internal/application/subscription"
	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/service"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
	restmiddleware "coin-server/internal/presentation/rest/middleware"
)

// adminHandlerDeps 管理ハンドラーテスト用の依存一式
type adminHandlerDeps struct {
	accountRepo     *MockAccountRepository
	transactionRepo *MockTransactionRepository
	auditRepo       *MockAuditRepository
	txManager       *MockTransactionManager
	handler         *AdminHandler
	logger          *otelinfra.Logger
}

func newAdminHandlerDeps(t *testing.T) *adminHandlerDeps {
	t.Helper()
	accountRepo := new(MockAccountRepository)
	transactionRepo := new(MockTransactionRepository)
	auditRepo := new(MockAuditRepository)
	txManager := new(MockTransactionManager)

	tracer := noop.NewTracerProvider().Tracer("test")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	ledgerEngine := service.NewLedgerEngine(accountRepo, transactionRepo, txManager)
	cat := catalog.DefaultCatalog()

	adminService := adminapp.NewAdminApplicationService(auditRepo, ledgerEngine, logger, metrics)
	subscriptionService := subscriptionapp.NewSubscriptionApplicationService(accountRepo, ledgerEngine, cat, logger, metrics)

	return &adminHandlerDeps{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		auditRepo:       auditRepo,
		txManager:       txManager,
		handler:         NewAdminHandler(adminService, subscriptionService),
		logger:          logger,
	}
}

// newAdminContext 管理APIのリクエストコンテキストを作成（user_idパスパラメータ付き）
func newAdminContext(method, path, body, targetUserID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "admin001")
	if targetUserID != "" {
		c.SetParamNames("user_id")
		c.SetParamValues(targetUserID)
	}
	return c, rec
}

func TestAdminHandler_AdjustBalance(t *testing.T) {
	t.Run("正常系: 加算調整", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("user123", 100, nil, account.Subscription{}, 1)
		deps.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		deps.accountRepo.On("FindByUserID", mock.Anything, "user123").Return(acc, nil)
		deps.accountRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		deps.transactionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		deps.auditRepo.On("SaveAdminAudit", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"500","reason":"compensation"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp AdjustBalanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "600", resp.BalanceAfter)
		assert.Equal(t, "completed", resp.Status)
		deps.auditRepo.AssertCalled(t, "SaveAdminAudit", mock.Anything, mock.Anything)
	})

	t.Run("正常系: 減算調整", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("user123", 1000, nil, account.Subscription{}, 1)
		deps.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		deps.accountRepo.On("FindByUserID", mock.Anything, "user123").Return(acc, nil)
		deps.accountRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		deps.transactionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		deps.auditRepo.On("SaveAdminAudit", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"-300","reason":"chargeback"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp AdjustBalanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "700", resp.BalanceAfter)
	})

	t.Run("異常系: 金額が0", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"0","reason":"noop"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp restmiddleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "invalid_amount", resp.Error)
	})

	t.Run("異常系: 金額の形式が不正", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"fifty","reason":"typo"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("異常系: reasonが空", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"500"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("異常系: 減算で残高不足", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("user123", 100, nil, account.Subscription{}, 1)
		deps.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		deps.accountRepo.On("FindByUserID", mock.Anything, "user123").Return(acc, nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/adjust", `{"amount":"-500","reason":"chargeback"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusConflict, rec.Code)
		var resp restmiddleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "insufficient_balance", resp.Error)
	})

	t.Run("異常系: user_idがトークンにない", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/admin/users/user123/adjust", bytes.NewBufferString(`{"amount":"500","reason":"compensation"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("user_id")
		c.SetParamValues("user123")

		invokeHandler(t, deps.logger, c, deps.handler.AdjustBalance)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminHandler_ActivateSubscription(t *testing.T) {
	t.Run("正常系: 既存アカウントを有効化", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("user123", 100, nil, account.Subscription{}, 1)
		deps.accountRepo.On("FindByUserID", mock.Anything, "user123").Return(acc, nil)
		deps.accountRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/subscription/activate", `{"plan_id":"premium_monthly"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.ActivateSubscription)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp SubscriptionStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "user123", resp.UserID)
		assert.True(t, resp.Active)
	})

	t.Run("正常系: アカウント未作成なら作成して有効化", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		deps.accountRepo.On("FindByUserID", mock.Anything, "newuser").Return(nil, account.ErrAccountNotFound)
		deps.accountRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/newuser/subscription/activate", `{"plan_id":"premium_monthly"}`, "newuser")
		invokeHandler(t, deps.logger, c, deps.handler.ActivateSubscription)

		assert.Equal(t, http.StatusOK, rec.Code)
		deps.accountRepo.AssertCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("異常系: 未知のプラン", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/subscription/activate", `{"plan_id":"gold_yearly"}`, "user123")
		invokeHandler(t, deps.logger, c, deps.handler.ActivateSubscription)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp restmiddleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unknown_plan", resp.Error)
	})

	t.Run("異常系: user_idが空", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)

		c, rec := newAdminContext(http.MethodPost, "/admin/users//subscription/activate", `{"plan_id":"premium_monthly"}`, "")
		invokeHandler(t, deps.logger, c, deps.handler.ActivateSubscription)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler_DeactivateSubscription(t *testing.T) {
	t.Run("正常系: 無効化成功", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("user123", 100, nil, account.Subscription{Active: true}, 1)
		deps.accountRepo.On("FindByUserID", mock.Anything, "user123").Return(acc, nil)
		deps.accountRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/user123/subscription/deactivate", "", "user123")
		invokeHandler(t, deps.logger, c, deps.handler.DeactivateSubscription)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp SubscriptionStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Active)
	})

	t.Run("異常系: アカウントが存在しない", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		deps.accountRepo.On("FindByUserID", mock.Anything, "ghost").Return(nil, account.ErrAccountNotFound)

		c, rec := newAdminContext(http.MethodPost, "/admin/users/ghost/subscription/deactivate", "", "ghost")
		invokeHandler(t, deps.logger, c, deps.handler.DeactivateSubscription)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var resp restmiddleware.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "account_not_found", resp.Error)
	})
}

func TestAdminHandler_TriggerSweep(t *testing.T) {
	t.Run("正常系: 対象者なしは0件", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		deps.accountRepo.On("FindActiveSubscriberIDs", mock.Anything).Return([]string{}, nil)

		c, rec := newAdminContext(http.MethodPost, "/internal/subscriptions/sweep", "", "")
		invokeHandler(t, deps.logger, c, deps.handler.TriggerSweep)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp SweepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 0, resp.Processed)
		assert.Equal(t, 0, resp.Succeeded)
		assert.Equal(t, 0, resp.Failed)
	})

	t.Run("正常系: 有効なサブスクリプションに付与", func(t *testing.T) {
		deps := newAdminHandlerDeps(t)
		acc := account.MustNewAccount("subscriber1", 0, nil, account.Subscription{Active: true}, 1)
		deps.accountRepo.On("FindActiveSubscriberIDs", mock.Anything).Return([]string{"subscriber1"}, nil)
		deps.txManager.On("WithTransaction", mock.Anything, mock.Anything).Return(nil)
		deps.accountRepo.On("FindByUserID", mock.Anything, "subscriber1").Return(acc, nil)
		deps.accountRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		deps.transactionRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		c, rec := newAdminContext(http.MethodPost, "/internal/subscriptions/sweep", "", "")
		invokeHandler(t, deps.logger, c, deps.handler.TriggerSweep)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp SweepResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Processed)
		assert.Equal(t, 1, resp.Succeeded)
		assert.Equal(t, 0, resp.Failed)
	})
}
