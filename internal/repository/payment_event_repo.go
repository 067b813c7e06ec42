// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// PaymentEventRepository 支付回调事件仓储
type PaymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository 创建支付回调事件仓储
func NewPaymentEventRepository(db *gorm.DB) *PaymentEventRepository {
	return &PaymentEventRepository{db: db}
}

// Record 记录事件，EventID 已存在时返回 false
func (r *PaymentEventRepository) Record(ctx context.Context, event *models.PaymentEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateResult 更新事件处理结果
func (r *PaymentEventRepository) UpdateResult(ctx context.Context, eventID, resultStatus string, bookingID *int64) error {
	fields := map[string]interface{}{"result": resultStatus}
	if bookingID != nil {
		fields["booking_id"] = *bookingID
	}
	return r.db.WithContext(ctx).Model(&models.PaymentEvent{}).
		Where("event_id = ?", eventID).
		Updates(fields).Error
}

// GetByEventID 根据事件 ID 获取
func (r *PaymentEventRepository) GetByEventID(ctx context.Context, eventID string) (*models.PaymentEvent, error) {
	var event models.PaymentEvent
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
