package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagegen_backend/internal/feature/generation/domain/entity"
)

// mockImageRepository はテスト用のImageRepositoryモック実装です。
type mockImageRepository struct {
	createFn     func(ctx context.Context, img *entity.Image) error
	listByUserFn func(ctx context.Context, userID uint) ([]entity.Image, error)
	listCalls    int
}

func (m *mockImageRepository) Create(ctx context.Context, img *entity.Image) error {
	if m.createFn != nil {
		return m.createFn(ctx, img)
	}
	return nil
}

func (m *mockImageRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Image, error) {
	m.listCalls++
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

var sampleImages = []entity.Image{
	{ID: 2, UserID: 1, CloudinaryURL: "u2", PromptText: "p2", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	{ID: 1, UserID: 1, CloudinaryURL: "u1", PromptText: "p1", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
}

// TestNewCachingImageRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingImageRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "images"},
		{"negative ttl uses default", -time.Minute, "", 5 * time.Minute, "images"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingImageRepository(nil, tt.ttl, &mockImageRepository{}, tt.namespace)

			assert.Equal(t, tt.expectedTTL, repo.ttl)
			assert.Equal(t, tt.expectedNamespace, repo.namespace)
		})
	}
}

// TestCachingImageRepository_CacheKey はキー形式を検証します。
func TestCachingImageRepository_CacheKey(t *testing.T) {
	t.Parallel()

	repo := NewCachingImageRepository(nil, 0, &mockImageRepository{}, "")

	assert.Equal(t, "images:user:42", repo.cacheKey(42))
}

// TestCachingImageRepository_NilRedis はRedis未設定時にそのまま委譲することを検証します。
func TestCachingImageRepository_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockImageRepository{listByUserFn: func(context.Context, uint) ([]entity.Image, error) {
		return sampleImages, nil
	}}
	repo := NewCachingImageRepository(nil, 0, inner, "")

	got, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, sampleImages, got)

	_, _ = repo.ListByUser(context.Background(), 1)
	assert.Equal(t, 2, inner.listCalls)
	assert.NoError(t, repo.Create(context.Background(), &entity.Image{UserID: 1}))
}

// TestCachingImageRepository_ListByUser_CacheHit はキャッシュヒット時にDBを呼ばないことを検証します。
func TestCachingImageRepository_ListByUser_CacheHit(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	inner := &mockImageRepository{}
	repo := NewCachingImageRepository(db, time.Minute, inner, "")

	cached, err := json.Marshal(sampleImages)
	require.NoError(t, err)
	mock.ExpectGet("images:user:1").SetVal(string(cached))

	got, err := repo.ListByUser(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[0].CloudinaryURL)
	assert.True(t, got[0].CreatedAt.Equal(sampleImages[0].CreatedAt))
	assert.Zero(t, inner.listCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingImageRepository_ListByUser_CacheMiss はキャッシュミス時にDB結果を保存することを検証します。
func TestCachingImageRepository_ListByUser_CacheMiss(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	inner := &mockImageRepository{listByUserFn: func(context.Context, uint) ([]entity.Image, error) {
		return sampleImages, nil
	}}
	repo := NewCachingImageRepository(db, time.Minute, inner, "")

	encoded, err := json.Marshal(sampleImages)
	require.NoError(t, err)
	mock.ExpectGet("images:user:1").RedisNil()
	mock.ExpectSet("images:user:1", encoded, time.Minute).SetVal("OK")

	got, err := repo.ListByUser(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, sampleImages, got)
	assert.Equal(t, 1, inner.listCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingImageRepository_ListByUser_DBError はDBエラー時にキャッシュしないことを検証します。
func TestCachingImageRepository_ListByUser_DBError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	dbErr := errors.New("db down")
	inner := &mockImageRepository{listByUserFn: func(context.Context, uint) ([]entity.Image, error) {
		return nil, dbErr
	}}
	repo := NewCachingImageRepository(db, time.Minute, inner, "")

	mock.ExpectGet("images:user:1").RedisNil()

	_, err := repo.ListByUser(context.Background(), 1)

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingImageRepository_CorruptedEntry は壊れたキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingImageRepository_CorruptedEntry(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	require.NoError(t, mr.Set("images:user:1", "{not json"))
	inner := &mockImageRepository{listByUserFn: func(context.Context, uint) ([]entity.Image, error) {
		return sampleImages, nil
	}}
	repo := NewCachingImageRepository(rdb, time.Minute, inner, "")

	got, err := repo.ListByUser(context.Background(), 1)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, inner.listCalls)

	stored, err := mr.Get("images:user:1")
	require.NoError(t, err)
	assert.Contains(t, stored, `"CloudinaryURL":"u2"`)
}

// TestCachingImageRepository_CreateInvalidates は作成後に次の一覧がDBから読まれることを検証します。
func TestCachingImageRepository_CreateInvalidates(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var rows []entity.Image
	inner := &mockImageRepository{
		createFn: func(_ context.Context, img *entity.Image) error {
			img.ID = uint(len(rows) + 1)
			rows = append([]entity.Image{*img}, rows...)
			return nil
		},
		listByUserFn: func(context.Context, uint) ([]entity.Image, error) {
			return append([]entity.Image(nil), rows...), nil
		},
	}
	repo := NewCachingImageRepository(rdb, time.Minute, inner, "")
	ctx := context.Background()

	got, err := repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, mr.Exists("images:user:1"))

	require.NoError(t, repo.Create(ctx, &entity.Image{UserID: 1, CloudinaryURL: "new"}))
	assert.False(t, mr.Exists("images:user:1"))

	got, err = repo.ListByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].CloudinaryURL)
	assert.Equal(t, 2, inner.listCalls)
}

// TestCachingImageRepository_CreateError はDB失敗時にキャッシュへ触れないことを検証します。
func TestCachingImageRepository_CreateError(t *testing.T) {
	t.Parallel()

	db, mock := redismock.NewClientMock()
	dbErr := errors.New("insert failed")
	repo := NewCachingImageRepository(db, time.Minute, &mockImageRepository{
		createFn: func(context.Context, *entity.Image) error { return dbErr },
	}, "")

	err := repo.Create(context.Background(), &entity.Image{UserID: 1})

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
