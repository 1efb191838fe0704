// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"imagegen_backend/internal/feature/generation/domain/entity"
	"imagegen_backend/internal/feature/generation/usecase"
)

// CachingImageRepository decorates an ImageRepository with a per-user Redis cache
// of the image listing. Create invalidates the owner's entry.
type CachingImageRepository struct {
	inner     usecase.ImageRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ImageRepository = (*CachingImageRepository)(nil)

// NewCachingImageRepository decorates an ImageRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "images".
// A nil rdb makes the decorator a pass-through.
func NewCachingImageRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ImageRepository, namespace string) *CachingImageRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "images"
	}
	return &CachingImageRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Create persists the image and drops the owner's cached listing.
func (c *CachingImageRepository) Create(ctx context.Context, img *entity.Image) error {
	if err := c.inner.Create(ctx, img); err != nil {
		return err
	}
	if c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, c.cacheKey(img.UserID)).Err(); err != nil {
		// stale entries expire with the TTL
		slog.Warn("image cache invalidation failed", "error", err, "user_id", img.UserID)
	}
	return nil
}

// ListByUser checks the cache first and falls back to the database.
func (c *CachingImageRepository) ListByUser(ctx context.Context, userID uint) ([]entity.Image, error) {
	if c.rdb == nil {
		return c.inner.ListByUser(ctx, userID)
	}

	key := c.cacheKey(userID)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Image
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey returns e.g. "images:user:42".
func (c *CachingImageRepository) cacheKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", c.namespace, userID)
}
