package checkout

import (
	"context"
	"time"

	"ecommerce_backend/internal/domain"

	"gorm.io/gorm"
)

// GormRecorder stores intents and orders with gorm
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder returns a Recorder backed by db
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) CreateIntent(ctx context.Context, intent *domain.CheckoutIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *GormRecorder) FailIntent(ctx context.Context, intentID, reason, transactionID string) error {
	return r.db.WithContext(ctx).Model(&domain.CheckoutIntent{}).
		Where("id = ? AND status = ?", intentID, domain.IntentPending).
		Updates(map[string]any{
			"status":         domain.IntentFailed,
			"reason":         reason,
			"transaction_id": transactionID,
		}).Error
}

func (r *GormRecorder) CompleteOrder(ctx context.Context, intentID string, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.CheckoutIntent{}).
			Where("id = ? AND status = ?", intentID, domain.IntentPending).
			Updates(map[string]any{
				"status":         domain.IntentCompleted,
				"order_id":       order.ID,
				"transaction_id": order.Payment.TransactionID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrIntentNotPending // Rolls back the order
		}
		return nil
	})
}

func (r *GormRecorder) StalePending(ctx context.Context, before time.Time) ([]domain.CheckoutIntent, error) {
	var intents []domain.CheckoutIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.IntentPending, before).
		Order("created_at ASC").
		Find(&intents).Error
	return intents, err
}

func (r *GormRecorder) MarkOrphaned(ctx context.Context, intentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.CheckoutIntent{}).
		Where("id = ? AND status = ?", intentID, domain.IntentPending).
		Update("status", domain.IntentOrphaned)
	return res.RowsAffected == 1, res.Error
}
