package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"coin-server/internal/domain/account"
	"coin-server/internal/domain/transaction"
)

const (
	maxRetries = 3
	baseDelay  = 10 * time.Millisecond
)

// ApplyRequest 台帳への1回の加算・減算リクエスト
type ApplyRequest struct {
	UserID   string
	Type     transaction.TransactionType
	Amount   int64
	Reason   transaction.Reason
	Memo     *string
	Metadata map[string]interface{}

	// Prepare 残高変更の前にアトミック単位内で実行されるフック
	// 報酬の重複チェックや購入の冪等性チェックなど、残高変更の前提条件を検証する
	// エラーを返した場合は単位全体がロールバックされる
	Prepare func(ctx context.Context, acc *account.Account) error

	// InUnit トランザクション追記の後にアトミック単位内で実行されるフック
	// アクションログの追記など、台帳と同時にコミットすべき書き込みを行う
	InUnit func(ctx context.Context, result *ApplyResult) error
}

// ApplyResult 台帳適用の結果
type ApplyResult struct {
	TransactionID string
	BalanceAfter  int64
}

// LedgerEngine 残高変更の唯一の入口となるドメインサービス
// 残高更新とトランザクション追記を1つのアトミック単位で行い、
// 書き込み競合時は単位全体を読み取りからやり直す
type LedgerEngine struct {
	accountRepo     account.AccountRepository
	transactionRepo transaction.TransactionRepository
	txManager       transaction.TransactionManager
	observers       []transaction.Observer
}

// NewLedgerEngine 新しいLedgerEngineを作成
func NewLedgerEngine(
	accountRepo account.AccountRepository,
	transactionRepo transaction.TransactionRepository,
	txManager transaction.TransactionManager,
) *LedgerEngine {
	return &LedgerEngine{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		txManager:       txManager,
	}
}

// Subscribe コミット済みトランザクションの通知先を登録する
// 起動時の配線でのみ呼び出すこと（実行中の登録は想定しない）
func (e *LedgerEngine) Subscribe(o transaction.Observer) {
	e.observers = append(e.observers, o)
}

// Apply 1件の残高変更をアトミックに適用する
// バージョン競合時は読み取りからやり直し、最大3回まで再試行する
func (e *LedgerEngine) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, txn, err := e.applyOnce(ctx, req)
		if err == nil {
			e.notify(txn)
			return result, nil
		}
		if !errors.Is(err, account.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err

		if attempt < maxRetries {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * baseDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("failed to apply ledger entry after %d attempts: %w", maxRetries, lastErr)
}

func (e *LedgerEngine) applyOnce(ctx context.Context, req ApplyRequest) (*ApplyResult, *transaction.Transaction, error) {
	var (
		result *ApplyResult
		txn    *transaction.Transaction
	)

	err := e.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		acc, err := e.accountRepo.FindByUserID(ctx, req.UserID)
		isNew := false
		if errors.Is(err, account.ErrAccountNotFound) {
			acc, err = account.NewEmptyAccount(req.UserID)
			if err != nil {
				return err
			}
			isNew = true
		} else if err != nil {
			return fmt.Errorf("failed to find account: %w", err)
		}

		if req.Prepare != nil {
			if err := req.Prepare(ctx, acc); err != nil {
				return err
			}
		}

		switch {
		case req.Type.IsCredit():
			if err := acc.Credit(req.Amount); err != nil {
				return err
			}
		case req.Type.IsDebit():
			if err := acc.Debit(req.Amount); err != nil {
				return err
			}
		default:
			return transaction.ErrInvalidTransaction
		}

		txn, err = transaction.NewTransaction(
			fmt.Sprintf("txn_%s", uuid.NewString()),
			req.UserID,
			req.Type,
			req.Reason,
			req.Amount,
			acc.CoinBalance(),
			req.Memo,
			req.Metadata,
		)
		if err != nil {
			return err
		}

		if isNew {
			if err := e.accountRepo.Create(ctx, acc); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}
		} else {
			if err := e.accountRepo.Save(ctx, acc); err != nil {
				return err
			}
		}

		if err := e.transactionRepo.Save(ctx, txn); err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		result = &ApplyResult{
			TransactionID: txn.TransactionID(),
			BalanceAfter:  txn.BalanceAfter(),
		}

		if req.InUnit != nil {
			if err := req.InUnit(ctx, result); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return result, txn, nil
}

func (e *LedgerEngine) notify(txn *transaction.Transaction) {
	for _, o := range e.observers {
		o.OnTransaction(txn)
	}
}
