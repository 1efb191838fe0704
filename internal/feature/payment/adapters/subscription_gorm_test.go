package adapters

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authentity "imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/payment/domain/entity"
	"imagegen_backend/internal/feature/payment/usecase"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// The pool is pinned to one connection so every query sees the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&authentity.User{}, &PaymentModel{}), "failed to migrate tables")
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *authentity.User {
	t.Helper()
	u := &authentity.User{Email: "payer@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newPayment(paymentID string, days int) *entity.Payment {
	return &entity.Payment{
		OrderID:   "order_" + paymentID,
		PaymentID: paymentID,
		Amount:    100,
		DaysAdded: days,
		CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSubscriptionGorm_Activate(t *testing.T) {
	expiry := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("activates and records payment", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		repo := NewSubscriptionRepository(db)
		p := newPayment("pay_1", 30)

		err := repo.Activate(context.Background(), user.ID, 0, expiry, p)

		require.NoError(t, err)
		assert.NotZero(t, p.ID)

		var got authentity.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.Equal(t, authentity.SubscriptionActive, got.SubscriptionStatus)
		require.NotNil(t, got.SubscriptionExpiry)
		assert.True(t, expiry.Equal(*got.SubscriptionExpiry))
		assert.Equal(t, int64(1), got.Version)

		var count int64
		require.NoError(t, db.Model(&PaymentModel{}).Where("payment_id = ?", "pay_1").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("stale version is a conflict and writes nothing", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		repo := NewSubscriptionRepository(db)

		err := repo.Activate(context.Background(), user.ID, 7, expiry, newPayment("pay_1", 30))

		assert.ErrorIs(t, err, usecase.ErrVersionConflict)

		var got authentity.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.Equal(t, authentity.SubscriptionInactive, got.SubscriptionStatus)
		assert.Nil(t, got.SubscriptionExpiry)

		var count int64
		require.NoError(t, db.Model(&PaymentModel{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := NewSubscriptionRepository(setupTestDB(t))

		err := repo.Activate(context.Background(), 999, 0, expiry, newPayment("pay_1", 30))

		assert.ErrorIs(t, err, usecase.ErrUserNotFound)
	})

	t.Run("replayed payment id is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		repo := NewSubscriptionRepository(db)
		require.NoError(t, repo.Activate(context.Background(), user.ID, 0, expiry, newPayment("pay_1", 30)))

		later := expiry.Add(30 * 24 * time.Hour)
		err := repo.Activate(context.Background(), user.ID, 1, later, newPayment("pay_1", 30))

		assert.ErrorIs(t, err, usecase.ErrPaymentAlreadyProcessed)

		var got authentity.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.True(t, expiry.Equal(*got.SubscriptionExpiry), "expiry must not move on replay")
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("concurrent activations with the same version apply once", func(t *testing.T) {
		db := setupTestDB(t)
		user := seedUser(t, db)
		repo := NewSubscriptionRepository(db)

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.Activate(context.Background(), user.ID, 0, expiry, newPayment("pay_"+string(rune('a'+i)), 30))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, usecase.ErrVersionConflict)
		}
		assert.Equal(t, 1, succeeded)

		var got authentity.User
		require.NoError(t, db.First(&got, user.ID).Error)
		assert.Equal(t, int64(1), got.Version)
	})
}

func TestSubscriptionGorm_ListByUser(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	first := newPayment("pay_old", 30)
	second := newPayment("pay_new", 60)
	second.CreatedAt = first.CreatedAt.Add(time.Hour)
	require.NoError(t, repo.Activate(ctx, user.ID, 0, time.Now().Add(time.Hour), first))
	require.NoError(t, repo.Activate(ctx, user.ID, 1, time.Now().Add(2*time.Hour), second))

	got, err := repo.ListByUser(ctx, user.ID)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pay_new", got[0].PaymentID)
	assert.Equal(t, 60, got[0].DaysAdded)
	assert.Equal(t, "pay_old", got[1].PaymentID)

	empty, err := repo.ListByUser(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
