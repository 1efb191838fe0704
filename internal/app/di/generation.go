// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"imagegen_backend/internal/config"
	genadapters "imagegen_backend/internal/feature/generation/adapters"
	"imagegen_backend/internal/feature/generation/adapters/huggingface"
	"imagegen_backend/internal/feature/generation/adapters/imagen"
	"imagegen_backend/internal/feature/generation/usecase"
	"imagegen_backend/internal/platform/cache"
	infrahttp "imagegen_backend/internal/platform/http"
)

// imageListTTL は画像一覧キャッシュの保持期間です。
const imageListTTL = 5 * time.Minute

// NewImageGenerator creates the inference provider selected by INFERENCE_PROVIDER.
func NewImageGenerator(ctx context.Context, cfg config.Inference) (usecase.ImageGenerator, error) {
	switch cfg.Provider {
	case "huggingface":
		return huggingface.NewHuggingFaceGenerator(huggingface.ConfigFrom(cfg), infrahttp.NewHTTPClient(cfg.Timeout)), nil
	case "imagen":
		return imagen.NewImagenGenerator(ctx, cfg.APIKey, cfg.ImagenModel, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown inference provider %q", cfg.Provider)
	}
}

// NewImageRepository creates the GORM image repository.
// If Redis is available, listings are cached in front of it.
func NewImageRepository(db *gorm.DB, rdb *redis.Client) usecase.ImageRepository {
	repo := genadapters.NewImageRepository(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingImageRepository(rdb, imageListTTL, repo, "images")
}
