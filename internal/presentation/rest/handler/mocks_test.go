package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/actionlog"
	"coin-server/internal/domain/audit"
	"coin-server/internal/domain/purchase"
	"coin-server/internal/domain/transaction"
)

// MockAccountRepository モック口座リポジトリ
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByUserID(ctx context.Context, userID string) (*account.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) Save(ctx context.Context, acc *account.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountRepository) FindActiveSubscriberIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTransactionRepository モックトランザクションリポジトリ
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Save(ctx context.Context, t *transaction.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*transaction.Transaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*transaction.Transaction), args.Error(1)
}

// MockPurchaseRepository モック購入レコードリポジトリ
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) FindByPurchaseID(ctx context.Context, purchaseID string) (*purchase.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Save(ctx context.Context, p *purchase.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPurchaseRepository) HasVerifiedPurchase(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

// MockActionLogRepository モックアクションログリポジトリ
type MockActionLogRepository struct {
	mock.Mock
}

func (m *MockActionLogRepository) Append(ctx context.Context, entry *actionlog.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActionLogRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*actionlog.Entry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*actionlog.Entry), args.Error(1)
}

// MockAuditRepository モック監査レコードリポジトリ
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAdminAudit(ctx context.Context, a *audit.AdminAudit) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAuditRepository) SaveFraudFlag(ctx context.Context, f *audit.FraudFlag) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockAuditRepository) FindFraudFlagsByUserID(ctx context.Context, userID string, limit, offset int) ([]*audit.FraudFlag, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.FraudFlag), args.Error(1)
}

// MockTransactionManager モックトランザクションマネージャー
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if fn != nil {
		return fn(ctx)
	}
	return args.Error(0)
}

// MockVerifier モックストア検証
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, req purchase.VerifyRequest) (*purchase.VerifyResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.VerifyResult), args.Error(1)
}

// MockVerifierResolver モックVerifierリゾルバー
type MockVerifierResolver struct {
	mock.Mock
}

func (m *MockVerifierResolver) Resolve(platform purchase.Platform) (purchase.Verifier, error) {
	args := m.Called(platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(purchase.Verifier), args.Error(1)
}
