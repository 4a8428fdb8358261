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

	"coin-server/internal/domain/purchase"
)

func TestPurchaseRepository_FindByPurchaseID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PurchaseRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	columns := []string{
		"purchase_id", "user_id", "platform", "bundle_id", "status",
		"total_coins", "bonus_coins", "price", "currency", "created_at", "verified_at",
	}
	createdAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	verifiedAt := createdAt.Add(time.Second)

	t.Run("正常系: 検証済み購入が見つかる", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("pur_001", "user123", "apple", "small", "verified", 120, 20, 1000, "KRW", createdAt, verifiedAt)
		mock.ExpectQuery(`SELECT purchase_id, user_id, platform, bundle_id, status`).
			WithArgs("pur_001").
			WillReturnRows(rows)

		got, err := repo.FindByPurchaseID(context.Background(), "pur_001")
		require.NoError(t, err)
		assert.Equal(t, "pur_001", got.PurchaseID())
		assert.Equal(t, "user123", got.UserID())
		assert.Equal(t, purchase.PlatformApple, got.Platform())
		assert.Equal(t, "small", got.BundleID())
		assert.True(t, got.IsVerified())
		assert.Equal(t, int64(120), got.TotalCoins())
		assert.Equal(t, int64(20), got.BonusCoins())
		require.NotNil(t, got.VerifiedAt())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("正常系: 未検証の購入はverified_atがNULL", func(t *testing.T) {
		rows := sqlmock.NewRows(columns).
			AddRow("pur_002", "user123", "google", "medium", "pending", 0, 0, 4500, "KRW", createdAt, nil)
		mock.ExpectQuery(`SELECT purchase_id, user_id, platform, bundle_id, status`).
			WithArgs("pur_002").
			WillReturnRows(rows)

		got, err := repo.FindByPurchaseID(context.Background(), "pur_002")
		require.NoError(t, err)
		assert.False(t, got.IsVerified())
		assert.Nil(t, got.VerifiedAt())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: 購入が見つからない", func(t *testing.T) {
		mock.ExpectQuery(`SELECT purchase_id, user_id, platform, bundle_id, status`).
			WithArgs("pur_missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByPurchaseID(context.Background(), "pur_missing")
		assert.ErrorIs(t, err, purchase.ErrPurchaseNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("異常系: DBエラー", func(t *testing.T) {
		mock.ExpectQuery(`SELECT purchase_id, user_id, platform, bundle_id, status`).
			WithArgs("pur_001").
			WillReturnError(sql.ErrConnDone)

		_, err := repo.FindByPurchaseID(context.Background(), "pur_001")
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPurchaseRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PurchaseRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	p, err := purchase.NewPurchase("pur_001", "user123", purchase.PlatformApple, "small", 1000, "KRW")
	require.NoError(t, err)

	tests := []struct {
		name      string
		setupMock func()
		wantError bool
	}{
		{
			name: "正常系: 購入レコードを保存",
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO coin_purchases`).
					WithArgs("pur_001", "user123", "apple", "small", "pending", int64(0), int64(0), int64(1000), "KRW", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "正常系: 既存行への再保存はupsertされる",
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO coin_purchases`).
					WithArgs("pur_001", "user123", "apple", "small", "pending", int64(0), int64(0), int64(1000), "KRW", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 2))
			},
		},
		{
			name: "異常系: DBエラー",
			setupMock: func() {
				mock.ExpectExec(`INSERT INTO coin_purchases`).
					WithArgs("pur_001", "user123", "apple", "small", "pending", int64(0), int64(0), int64(1000), "KRW", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			err := repo.Save(context.Background(), p)

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPurchaseRepository_HasVerifiedPurchase(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PurchaseRepository{
		db:     &DB{DB: db},
		tracer: otel.Tracer("test"),
	}

	tests := []struct {
		name      string
		setupMock func()
		want      bool
		wantError bool
	}{
		{
			name: "正常系: 検証済み購入あり",
			setupMock: func() {
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user123").
					WillReturnRows(rows)
			},
			want: true,
		},
		{
			name: "正常系: 検証済み購入なし",
			setupMock: func() {
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(false)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user123").
					WillReturnRows(rows)
			},
			want: false,
		},
		{
			name: "異常系: DBエラー",
			setupMock: func() {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("user123").
					WillReturnError(sql.ErrConnDone)
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()
			got, err := repo.HasVerifiedPurchase(context.Background(), "user123")

			if tt.wantError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
