package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pmsportal/internal/models/db_models"
	"pmsportal/pkg/utils"
)

type WebhookEventRepository interface {
	// Record inserts the event. created is false when the idempotency key was already stored.
	Record(ctx context.Context, event *db_models.WebhookEvent) (created bool, err error)
	FindByKey(ctx context.Context, key string) (*db_models.WebhookEvent, error)
	MarkProcessed(ctx context.Context, id uint, status db_models.WebhookEventStatus, processingErr string) error
}

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

func (r *webhookEventRepository) Record(ctx context.Context, event *db_models.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "idempotency_key"}}, DoNothing: true}).
		Create(event)
	if res.Error != nil {
		return false, fmt.Errorf("%w: record webhook event: %v", utils.ErrDatabaseError, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *webhookEventRepository) FindByKey(ctx context.Context, key string) (*db_models.WebhookEvent, error) {
	var event db_models.WebhookEvent
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, id uint, status db_models.WebhookEventStatus, processingErr string) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&db_models.WebhookEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":           status,
			"processing_error": processingErr,
			"processed_at":     &now,
		}).Error
	if err != nil {
		return fmt.Errorf("%w: mark webhook event %d: %v", utils.ErrDatabaseError, id, err)
	}
	return nil
}
