package models

import (
	"time"
)

// Room 房间模型
type Room struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Capacity    int       `gorm:"not null" json:"capacity"`
	ImageURL    *string   `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Available   bool      `gorm:"not null;index" json:"available"` // 管理员控制，与预订无关
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}
