// Package cloudinary はCloudinaryへの画像アップロードを提供します。
package cloudinary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"imagegen_backend/internal/config"
	"imagegen_backend/internal/feature/generation/usecase"
)

// CloudinaryStore は生成画像をCloudinaryにPNGとして保存するImageStore実装です。
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	timeout time.Duration
}

// CloudinaryStoreがImageStoreを実装していることをコンパイル時に検証します。
var _ usecase.ImageStore = (*CloudinaryStore)(nil)

// NewCloudinaryStore は認証情報からクライアントを生成します。
func NewCloudinaryStore(cfg config.Storage) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return NewCloudinaryStoreWithClient(cld, cfg.Folder, cfg.Timeout), nil
}

// NewCloudinaryStoreWithClient は生成済みのクライアントを使います。
func NewCloudinaryStoreWithClient(cld *cloudinary.Cloudinary, folder string, timeout time.Duration) *CloudinaryStore {
	return &CloudinaryStore{cld: cld, folder: folder, timeout: timeout}
}

// Upload は画像をアップロードし、secure URL を返します。
// 失敗やタイムアウトは usecase.ErrStorage でラップして返します。
func (s *CloudinaryStore) Upload(ctx context.Context, data []byte) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       s.folder,
		Format:       "png",
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", usecase.ErrStorage, err)
	}
	if res == nil {
		return "", fmt.Errorf("%w: empty upload result", usecase.ErrStorage)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("%w: %w", usecase.ErrStorage, errors.New(res.Error.Message))
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("%w: upload result has no secure url", usecase.ErrStorage)
	}
	return res.SecureURL, nil
}
