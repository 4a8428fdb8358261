package mysql

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"coin-server/internal/domain/actionlog"
)

func TestActionLogRepository_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &ActionLogRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	balanceAfter := int64(450)
	createdAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	successEntry, err := actionlog.RestoreEntry("act_001", "user123", "super_like", actionlog.StatusSuccess, 50, &balanceAfter, createdAt)
	require.NoError(t, err)
	failedEntry, err := actionlog.RestoreEntry("act_002", "user123", "boost", actionlog.StatusFailed, 200, nil, createdAt)
	require.NoError(t, err)

	tests := []struct {
		name      string
		entry     *actionlog.Entry
		setupMock func()
		wantError bool
	}{
		{
			name:  "正常系: 成功エントリを追記",
			entry: successEntry,
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO action_logs`).
					WithArgs("act_001", "user123", "super_like", "success", int64(50), int64(450), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name:  "正常系: 失敗エントリはbalance_afterがNULL",
			entry: failedEntry,
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO action_logs`).
					WithArgs("act_002", "user123", "boost", "failed", int64(200), nil, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name:  "異常系: DBエラー",
			entry: successEntry,
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO action_logs`).
					WithArgs("act_001", "user123", "super_like", "success", int64(50), int64(450), sqlmock.AnyArg()).
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			err := repo.Append(context.Background(), tt.entry)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestActionLogRepository_FindByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &ActionLogRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	columns := []string{"entry_id", "user_id", "action", "status", "cost", "balance_after", "created_at"}
	createdAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("正常系: エントリ一覧を取得", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("act_002", "user123", "boost", "failed", 200, nil, createdAt).
			AddRow("act_001", "user123", "super_like", "success", 50, 450, createdAt.Add(-time.Minute))
		mock.ExpectQuery(`SELECT entry_id, user_id, action, status`).
			WithArgs("user123", 50, 0).
			WillReturnRows(rows)

		got, err := repo.FindByUserID(context.Background(), "user123", 50, 0)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, actionlog.StatusFailed, got[0].Status())
		assert.Nil(t, got[0].BalanceAfter())
		assert.Equal(t, actionlog.StatusSuccess, got[1].Status())
		require.NotNil(t, got[1].BalanceAfter())
		assert.Equal(t, int64(450), *got[1].BalanceAfter())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: DBエラー", func(t *testing.T) {
		mock.ExpectQuery(`SELECT entry_id, user_id, action, status`).
			WithArgs("user123", 50, 0).
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByUserID(context.Background(), "user123", 50, 0)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
