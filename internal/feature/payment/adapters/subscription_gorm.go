// Package adapters はpaymentフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	authentity "imagegen_backend/internal/feature/auth/domain/entity"
	"imagegen_backend/internal/feature/payment/domain/entity"
	"imagegen_backend/internal/feature/payment/usecase"
	platformdb "imagegen_backend/internal/platform/db"
)

// PaymentModel は検証済み決済の台帳です。payment_id の一意制約でリプレイを防ぎます。
type PaymentModel struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	OrderID   string    `gorm:"size:64;not null"`
	PaymentID string    `gorm:"size:64;not null;uniqueIndex"`
	Amount    int64     `gorm:"not null"`
	DaysAdded int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

type subscriptionGorm struct {
	db *gorm.DB
}

var _ usecase.SubscriptionRepository = (*subscriptionGorm)(nil)

// NewSubscriptionRepository は指定されたgorm.DB接続でSubscriptionRepositoryを生成します。
func NewSubscriptionRepository(db *gorm.DB) *subscriptionGorm {
	return &subscriptionGorm{db: db}
}

// Activate はユーザー更新と決済記録を1トランザクションで行います。
// どちらかが失敗した場合は何も書き込まれません。
func (r *subscriptionGorm) Activate(ctx context.Context, userID uint, expectedVersion int64, expiry time.Time, p *entity.Payment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seen int64
		if err := tx.Model(&PaymentModel{}).Where("payment_id = ?", p.PaymentID).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return usecase.ErrPaymentAlreadyProcessed
		}

		res := tx.Model(&authentity.User{}).
			Where("id = ? AND version = ?", userID, expectedVersion).
			Updates(map[string]any{
				"subscription_status": authentity.SubscriptionActive,
				"subscription_expiry": expiry,
				"version":             gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&authentity.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return usecase.ErrUserNotFound
			}
			return usecase.ErrVersionConflict
		}

		m := PaymentModel{
			UserID:    userID,
			OrderID:   p.OrderID,
			PaymentID: p.PaymentID,
			Amount:    p.Amount,
			DaysAdded: p.DaysAdded,
			CreatedAt: p.CreatedAt,
		}
		if err := tx.Create(&m).Error; err != nil {
			// 同時に別トランザクションが同じ payment_id を記録した場合
			if platformdb.IsDuplicateKey(err) {
				return usecase.ErrPaymentAlreadyProcessed
			}
			return err
		}
		p.ID = m.ID
		p.CreatedAt = m.CreatedAt
		return nil
	})
}

// ListByUser returns the user's verified payments, newest first.
func (r *subscriptionGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Payment, error) {
	var rows []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.Payment{
			ID:        m.ID,
			UserID:    m.UserID,
			OrderID:   m.OrderID,
			PaymentID: m.PaymentID,
			Amount:    m.Amount,
			DaysAdded: m.DaysAdded,
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
