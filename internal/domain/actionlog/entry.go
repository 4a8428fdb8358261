package actionlog

import (
	"regexp"
	"time"
)

var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)

// Entry コイン消費アクションの記録エントリ
// 成功・失敗を問わずアクションの試行ごとに追記される
type Entry struct {
	entryID      string
	userID       string
	action       string
	status       Status
	cost         int64
	balanceAfter *int64 // 成功時のみ記録される残高スナップショット
	createdAt    time.Time
}

// NewEntry 新しいEntryを作成
func NewEntry(
	entryID string,
	userID string,
	action string,
	status Status,
	cost int64,
	balanceAfter *int64,
) (*Entry, error) {
	return RestoreEntry(entryID, userID, action, status, cost, balanceAfter, time.Now())
}

// RestoreEntry 保存済みデータからEntryを復元
func RestoreEntry(
	entryID string,
	userID string,
	action string,
	status Status,
	cost int64,
	balanceAfter *int64,
	createdAt time.Time,
) (*Entry, error) {
	if entryID == "" {
		return nil, ErrInvalidEntryID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if action == "" {
		return nil, ErrInvalidAction
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if cost < 0 {
		return nil, ErrInvalidCost
	}

	return &Entry{
		entryID:      entryID,
		userID:       userID,
		action:       action,
		status:       status,
		cost:         cost,
		balanceAfter: balanceAfter,
		createdAt:    createdAt,
	}, nil
}

// EntryID エントリIDを返す
func (e *Entry) EntryID() string {
	return e.entryID
}

// UserID ユーザーIDを返す
func (e *Entry) UserID() string {
	return e.userID
}

// Action アクション名を返す
func (e *Entry) Action() string {
	return e.action
}

// Status ステータスを返す
func (e *Entry) Status() Status {
	return e.status
}

// Cost 消費コイン数を返す
func (e *Entry) Cost() int64 {
	return e.cost
}

// BalanceAfter 処理後の残高を返す（失敗時はnil）
func (e *Entry) BalanceAfter() *int64 {
	return e.balanceAfter
}

// CreatedAt 作成日時を返す
func (e *Entry) CreatedAt() time.Time {
	return e.createdAt
}
