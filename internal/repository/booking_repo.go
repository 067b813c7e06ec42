// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// BookingFilter 预订查询条件
type BookingFilter struct {
	UserID *int64
	RoomID *int64
	Status string
	Since  *time.Time // 创建时间晚于该时刻
}

// CreateWithin 在事务中插入预订并执行 fn，fn 返回错误时回滚插入
func (r *BookingRepository) CreateWithin(ctx context.Context, booking *models.Booking, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(booking).Error; err != nil {
			return err
		}
		if fn == nil {
			return nil
		}
		return fn(ctx)
	})
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails 根据 ID 获取预订（包含用户和房间）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Room").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByPaymentIntentID 根据支付流水号获取预订
func (r *BookingRepository) GetByPaymentIntentID(ctx context.Context, ref string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Where("payment_intent_id = ?", ref).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// HasOverlap 检查房间在 [checkIn, checkOut) 内是否存在占用预订
// excludeID 非零时排除该预订本身
func (r *BookingRepository) HasOverlap(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", models.BlockingStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateIfStatus 仅当当前状态属于 from 时更新，返回是否更新成功
// 用作状态字段上的单行 compare-and-set
func (r *BookingRepository) UpdateIfStatus(ctx context.Context, id int64, from []string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, filter BookingFilter, offset, limit int) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Booking{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Preload("Room").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListForExport 获取导出数据，最多 max 条
func (r *BookingRepository) ListForExport(ctx context.Context, filter BookingFilter, max int) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Booking{}), filter).
		Preload("User").
		Preload("Room").
		Order("id ASC").
		Limit(max).
		Find(&bookings).Error
	return bookings, err
}

func (r *BookingRepository) applyFilter(query *gorm.DB, filter BookingFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.RoomID != nil {
		query = query.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Since != nil {
		query = query.Where("created_at > ?", *filter.Since)
	}
	return query
}
