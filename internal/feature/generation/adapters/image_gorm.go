package adapters

import (
	"context"
	"time"

	"imagegen_backend/internal/feature/generation/domain/entity"
	"imagegen_backend/internal/feature/generation/usecase"

	"gorm.io/gorm"
)

type imageGorm struct {
	db *gorm.DB
}

var _ usecase.ImageRepository = (*imageGorm)(nil)

func NewImageRepository(db *gorm.DB) *imageGorm {
	return &imageGorm{db: db}
}

type ImageModel struct {
	ID            uint      `gorm:"primaryKey"`
	UserID        uint      `gorm:"not null;index:idx_images_user_created,priority:1"`
	CloudinaryURL string    `gorm:"size:1024;not null"`
	PromptText    string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"not null;index:idx_images_user_created,priority:2"`
}

func (ImageModel) TableName() string {
	return "images"
}

func toModel(e *entity.Image) ImageModel {
	return ImageModel{
		UserID:        e.UserID,
		CloudinaryURL: e.CloudinaryURL,
		PromptText:    e.PromptText,
		CreatedAt:     e.CreatedAt,
	}
}

func toEntity(m ImageModel) entity.Image {
	return entity.Image{
		ID:            m.ID,
		UserID:        m.UserID,
		CloudinaryURL: m.CloudinaryURL,
		PromptText:    m.PromptText,
		CreatedAt:     m.CreatedAt,
	}
}

// Create inserts the image and copies the generated id and timestamp back.
func (r *imageGorm) Create(ctx context.Context, img *entity.Image) error {
	m := toModel(img)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	img.ID = m.ID
	img.CreatedAt = m.CreatedAt
	return nil
}

// ListByUser returns the user's images newest first; ties fall back to id.
func (r *imageGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Image, error) {
	var rows []ImageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Image, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
