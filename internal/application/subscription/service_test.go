package subscription

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/catalog"
	"coin-server/internal/domain/service"
	"coin-server/internal/domain/transaction"
	otelinfra "coin-server/internal/infrastructure/observability/otel"
)

// memTxManager テスト用のインメモリトランザクションマネージャー
type memTxManager struct{}

func (memTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type storedAccount struct {
	balance      int64
	subscription account.Subscription
	version      int
}

// memAccountRepo テスト用のインメモリアカウントリポジトリ
// サブスクリプション状態も永続化する
type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*storedAccount
	findErr  map[string]error // ユーザーごとの読み取り失敗の注入
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{
		accounts: make(map[string]*storedAccount),
		findErr:  make(map[string]error),
	}
}

func (r *memAccountRepo) seed(userID string, balance int64, sub account.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[userID] = &storedAccount{balance: balance, subscription: sub, version: 1}
}

func (r *memAccountRepo) FindByUserID(ctx context.Context, userID string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.findErr[userID]; ok {
		return nil, err
	}
	stored, ok := r.accounts[userID]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return account.NewAccount(userID, stored.balance, nil, stored.subscription, stored.version)
}

func (r *memAccountRepo) Create(ctx context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[acc.UserID()]; ok {
		return account.ErrVersionConflict
	}
	r.accounts[acc.UserID()] = &storedAccount{
		balance:      acc.CoinBalance(),
		subscription: acc.Subscription(),
		version:      1,
	}
	return nil
}

func (r *memAccountRepo) Save(ctx context.Context, acc *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.accounts[acc.UserID()]
	if !ok || stored.version != acc.Version() {
		return account.ErrVersionConflict
	}
	stored.balance = acc.CoinBalance()
	stored.subscription = acc.Subscription()
	stored.version++
	return nil
}

func (r *memAccountRepo) FindActiveSubscriberIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for userID, stored := range r.accounts {
		if stored.subscription.Active {
			ids = append(ids, userID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memAccountRepo) stored(userID string) *storedAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[userID]
}

// memTransactionRepo テスト用のインメモリトランザクションリポジトリ
type memTransactionRepo struct {
	mu           sync.Mutex
	transactions []*transaction.Transaction
}

func (r *memTransactionRepo) Save(ctx context.Context, t *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, t)
	return nil
}

func (r *memTransactionRepo) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	return nil, transaction.ErrTransactionNotFound
}

func (r *memTransactionRepo) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	return nil, nil
}

func (r *memTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transactions)
}

func newTestService(t *testing.T, now time.Time) (*SubscriptionApplicationService, *memAccountRepo, *memTransactionRepo) {
	t.Helper()

	accountRepo := newMemAccountRepo()
	txnRepo := &memTransactionRepo{}
	engine := service.NewLedgerEngine(accountRepo, txnRepo, memTxManager{})

	logger := otelinfra.NewLogger(otel.Tracer("test"))
	metrics, err := otelinfra.NewMetrics("test")
	require.NoError(t, err)

	svc := NewSubscriptionApplicationService(accountRepo, engine, catalog.DefaultCatalog(), logger, metrics)
	svc.now = func() time.Time { return now }
	return svc, accountRepo, txnRepo
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSubscriptionApplicationService_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC)

	t.Run("正常系: 有効なサブスクリプション全員にデイリーコインを付与", func(t *testing.T) {
		svc, accountRepo, txnRepo := newTestService(t, now)
		accountRepo.seed("user001", 100, account.Subscription{Active: true, LastBoostAt: timePtr(now.Add(-2 * 24 * time.Hour))})
		accountRepo.seed("user002", 0, account.Subscription{Active: true, LastBoostAt: timePtr(now.Add(-2 * 24 * time.Hour))})
		accountRepo.seed("user003", 50, account.Subscription{Active: false})

		resp, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Processed)
		assert.Equal(t, 2, resp.Succeeded)
		assert.Equal(t, 0, resp.Failed)

		assert.Equal(t, int64(125), accountRepo.stored("user001").balance)
		assert.Equal(t, int64(25), accountRepo.stored("user002").balance)
		assert.Equal(t, int64(50), accountRepo.stored("user003").balance)
		assert.Equal(t, 2, txnRepo.count())
	})

	t.Run("正常系: 付与日時が記録される", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user001", 0, account.Subscription{Active: true, LastBoostAt: timePtr(now.Add(-time.Hour))})

		_, err := svc.Sweep(ctx)
		require.NoError(t, err)

		sub := accountRepo.stored("user001").subscription
		require.NotNil(t, sub.LastDailyCreditAt)
		assert.Equal(t, now, *sub.LastDailyCreditAt)
	})

	t.Run("正常系: ブースト未付与のアカウントにはブースト枠も付与", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user001", 0, account.Subscription{Active: true})

		_, err := svc.Sweep(ctx)
		require.NoError(t, err)

		sub := accountRepo.stored("user001").subscription
		assert.Equal(t, int64(1), sub.BoostQuota)
		require.NotNil(t, sub.LastBoostAt)
		assert.Equal(t, now, *sub.LastBoostAt)
	})

	t.Run("正常系: 最終ブーストが間隔より古ければ再付与", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user001", 0, account.Subscription{
			Active:      true,
			LastBoostAt: timePtr(now.Add(-8 * 24 * time.Hour)),
			BoostQuota:  1,
		})

		_, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), accountRepo.stored("user001").subscription.BoostQuota)
	})

	t.Run("正常系: 最終ブーストが間隔内なら付与しない", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		lastBoost := now.Add(-2 * 24 * time.Hour)
		accountRepo.seed("user001", 0, account.Subscription{
			Active:      true,
			LastBoostAt: &lastBoost,
			BoostQuota:  1,
		})

		_, err := svc.Sweep(ctx)
		require.NoError(t, err)

		sub := accountRepo.stored("user001").subscription
		assert.Equal(t, int64(1), sub.BoostQuota)
		require.NotNil(t, sub.LastBoostAt)
		assert.Equal(t, lastBoost, *sub.LastBoostAt)
	})

	t.Run("異常系: 1アカウントの失敗は他のアカウントを妨げない", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user001", 0, account.Subscription{Active: true, LastBoostAt: timePtr(now)})
		accountRepo.seed("user002", 0, account.Subscription{Active: true, LastBoostAt: timePtr(now)})
		accountRepo.seed("user003", 0, account.Subscription{Active: true, LastBoostAt: timePtr(now)})
		accountRepo.findErr["user002"] = errors.New("connection reset")

		resp, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, resp.Processed)
		assert.Equal(t, 2, resp.Succeeded)
		assert.Equal(t, 1, resp.Failed)

		assert.Equal(t, int64(25), accountRepo.stored("user001").balance)
		assert.Equal(t, int64(0), accountRepo.stored("user002").balance)
		assert.Equal(t, int64(25), accountRepo.stored("user003").balance)
	})

	t.Run("正常系: 対象がいなければ何もしない", func(t *testing.T) {
		svc, _, txnRepo := newTestService(t, now)

		resp, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Processed)
		assert.Equal(t, 0, txnRepo.count())
	})
}

func TestSubscriptionApplicationService_Activate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC)

	t.Run("正常系: 既存アカウントの有効化", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user123", 100, account.Subscription{})

		err := svc.Activate(ctx, &ActivateRequest{UserID: "user123", PlanID: "premium_monthly"})
		require.NoError(t, err)
		assert.True(t, accountRepo.stored("user123").subscription.Active)
		assert.Equal(t, int64(100), accountRepo.stored("user123").balance)
	})

	t.Run("正常系: アカウントが存在しなければ作成して有効化", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)

		err := svc.Activate(ctx, &ActivateRequest{UserID: "newuser", PlanID: "premium_monthly"})
		require.NoError(t, err)

		stored := accountRepo.stored("newuser")
		require.NotNil(t, stored)
		assert.True(t, stored.subscription.Active)
		assert.Equal(t, int64(0), stored.balance)
	})

	t.Run("異常系: 未知のプラン", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user123", 100, account.Subscription{})

		err := svc.Activate(ctx, &ActivateRequest{UserID: "user123", PlanID: "gold_yearly"})
		assert.ErrorIs(t, err, catalog.ErrUnknownPlan)
		assert.False(t, accountRepo.stored("user123").subscription.Active)
	})
}

func TestSubscriptionApplicationService_Deactivate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC)

	t.Run("正常系: サブスクリプションの無効化", func(t *testing.T) {
		svc, accountRepo, _ := newTestService(t, now)
		accountRepo.seed("user123", 100, account.Subscription{Active: true})

		err := svc.Deactivate(ctx, &DeactivateRequest{UserID: "user123"})
		require.NoError(t, err)
		assert.False(t, accountRepo.stored("user123").subscription.Active)
	})

	t.Run("異常系: 存在しないアカウント", func(t *testing.T) {
		svc, _, _ := newTestService(t, now)

		err := svc.Deactivate(ctx, &DeactivateRequest{UserID: "ghost"})
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
	})
}
