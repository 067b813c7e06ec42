package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentEvent 支付回调事件，按 EventID 去重
type PaymentEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"event_id"`
	Type      string         `gorm:"type:varchar(100);not null" json:"type"`
	Reference *string        `gorm:"type:varchar(255);index" json:"reference,omitempty"`
	BookingID *int64         `gorm:"index" json:"booking_id,omitempty"`
	Result    string         `gorm:"type:varchar(20);not null;default:'received'" json:"result"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// PaymentEventResult 回调处理结果
const (
	PaymentEventReceived = "received"
	PaymentEventApplied  = "applied"
	PaymentEventIgnored  = "ignored"
)
