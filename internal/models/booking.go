package models

import (
	"time"
)

// Booking 预订模型
type Booking struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingNo       string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"booking_no"`
	UserID          int64      `gorm:"index;not null" json:"user_id"`
	RoomID          int64      `gorm:"index:idx_bookings_room_status;not null" json:"room_id"`
	CheckIn         time.Time  `gorm:"not null" json:"check_in"`
	CheckOut        time.Time  `gorm:"not null" json:"check_out"`
	Guests          int        `gorm:"not null" json:"guests"`
	Status          string     `gorm:"type:varchar(20);index:idx_bookings_room_status;not null" json:"status"`
	Otp             *string    `gorm:"type:varchar(10)" json:"-"`
	OtpSentAt       *time.Time `json:"-"`
	Amount          *float64   `gorm:"type:decimal(10,2)" json:"amount,omitempty"`
	PaymentIntentID *string    `gorm:"type:varchar(255);index" json:"payment_intent_id,omitempty"`
	PaymentStatus   *string    `gorm:"type:varchar(20)" json:"payment_status,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus 预订状态
const (
	BookingStatusPending   = "pending"   // 待验证
	BookingStatusConfirmed = "confirmed" // 已确认
	BookingStatusPaid      = "paid"      // 已支付
	BookingStatusCancelled = "cancelled" // 已取消
)

// PaymentStatus 支付状态
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// BlockingStatuses 占用房间的预订状态
var BlockingStatuses = []string{BookingStatusConfirmed, BookingStatusPaid}

// IsTerminal 是否为终态
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusPaid || b.Status == BookingStatusCancelled
}

// IsBlocking 是否占用房间
func (b *Booking) IsBlocking() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusPaid
}

// Overlaps 半开区间 [CheckIn, CheckOut) 是否与给定区间相交
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}
